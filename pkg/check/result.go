// Package check implements the consistency audit between the metadata
// catalog and the physical vault: the per-object probe protocol, the
// storage-location hierarchy resolver, and the two reconcilers (top-down
// from the catalog, bottom-up from disk).
package check

// Status is the closed set of audit outcomes. Every examined entity gets
// exactly one.
type Status string

const (
	StatusOK               Status = "OK"                 // consistent
	StatusNotExisting      Status = "NOT_EXISTING"       // registered, absent on disk
	StatusNotRegistered    Status = "NOT_REGISTERED"     // on disk, absent from catalog
	StatusFileSizeMismatch Status = "FILE_SIZE_MISMATCH" // sizes differ
	StatusChecksumMismatch Status = "CHECKSUM_MISMATCH"  // digests differ
	StatusAccessDenied     Status = "ACCESS_DENIED"      // stat/open refused
	StatusNoChecksum       Status = "NO_CHECKSUM"        // catalog has no digest recorded
)

// ObjectKind distinguishes what was audited: catalog-side entities in the
// top-down run, disk-side entities in the bottom-up run.
type ObjectKind string

const (
	KindCollection ObjectKind = "COLLECTION"
	KindDataObject ObjectKind = "DATAOBJECT"
	KindFile       ObjectKind = "FILE"
	KindDirectory  ObjectKind = "DIRECTORY"
)

// Observed-value keys used in Result.Observed.
const (
	ObservedSize     = "observed_size"
	ExpectedSize     = "expected_size"
	ObservedChecksum = "observed_checksum"
	ExpectedChecksum = "expected_checksum"
)

// UnknownLogicalPath marks disk entities with no catalog registration.
const UnknownLogicalPath = "UNKNOWN"

// Result is one audit finding. Observed carries expected/observed size or
// checksum strings only when relevant to the status.
type Result struct {
	Kind         ObjectKind
	LogicalPath  string
	PhysicalPath string
	Status       Status
	Observed     map[string]string
}

// Sink consumes the result stream in production order. Head is called
// once, before the first Emit, so the sink can write framing output.
type Sink interface {
	Head() error
	Emit(Result) error
}
