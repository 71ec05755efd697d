// Package catalog defines the metadata catalog's query surface and the
// read-only entry types it returns. Implementations (e.g. the SQLite
// backend in internal/catalogdb) own connection and query details.
package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by lookup methods when no entry matches.
var ErrNotFound = errors.New("catalog: not found")

// PlacementDelimiter joins location names into a placement path string.
// A data object is placed on a leaf iff its stored placement path equals
// the leaf's computed path exactly; there is no prefix matching.
const PlacementDelimiter = ";"

// StorageLocation is a node in the catalog's location forest. Leaves with
// a vault path are storage-capable; everything else only routes placement.
type StorageLocation struct {
	ID        int64
	Name      string
	Parent    string   // empty for the root of its tree
	Children  []string // ordered as stored in the catalog
	Host      string   // host identity the location is served from
	VaultPath string   // physical root; empty unless storage-capable
	Zone      string
}

// IsLeaf reports whether the location has no children.
func (l *StorageLocation) IsLeaf() bool {
	return len(l.Children) == 0
}

// CollectionEntry is a registered collection (logical directory).
type CollectionEntry struct {
	ID          int64
	LogicalPath string
}

// DataObjectEntry is a registered data object with its expected attributes.
type DataObjectEntry struct {
	LogicalPath   string // parent collection path + "/" + name
	Name          string
	Size          int64
	Checksum      string // catalog-native representation; empty when none recorded
	PhysicalPath  string // authoritative on-disk path
	PlacementPath string // stored placement path string
}

// HasChecksum reports whether the catalog recorded a digest for the object.
func (e *DataObjectEntry) HasChecksum() bool {
	return e.Checksum != ""
}

// Catalog is the query surface the reconcilers need. Every call is a
// one-shot request returning a finite result; callers re-issue queries
// per batch instead of rewinding.
type Catalog interface {
	// LookupLocation returns the storage location with the given name,
	// or ErrNotFound.
	LookupLocation(ctx context.Context, name string) (*StorageLocation, error)

	// LookupLocationByPhysicalPath returns the storage location whose
	// vault path is exactly path on the given host, or ErrNotFound.
	LookupLocationByPhysicalPath(ctx context.Context, path, host string) (*StorageLocation, error)

	// ListCollections returns every collection in the location's zone
	// that has a presence on the location (at least one data object
	// whose placement path includes it). A non-empty prefix restricts
	// the result to the collection with that exact logical path plus
	// all of its descendants.
	ListCollections(ctx context.Context, location *StorageLocation, prefix string) ([]CollectionEntry, error)

	// ListDataObjects returns the data objects of a collection whose
	// stored placement path equals placement exactly.
	ListDataObjects(ctx context.Context, collectionID int64, placement string) ([]DataObjectEntry, error)

	// LookupCollection returns the collection registered at logicalPath,
	// or ErrNotFound. A non-nil location additionally requires the
	// collection to have a presence on that location; a collection
	// registered only elsewhere is not found.
	LookupCollection(ctx context.Context, logicalPath string, location *StorageLocation) (*CollectionEntry, error)

	// LookupDataObject returns the data object registered with the given
	// physical path and placement path, or ErrNotFound.
	LookupDataObject(ctx context.Context, physicalPath, placement string) (*DataObjectEntry, error)
}

// JoinPlacement builds a placement path string from a root-first chain of
// location names.
func JoinPlacement(names []string) string {
	return strings.Join(names, PlacementDelimiter)
}

// SplitChildren parses the catalog-native semicolon-delimited child list.
// Some catalogs wrap child names in braces carrying context strings; both
// bare and braced forms are accepted.
func SplitChildren(children string) []string {
	if children == "" {
		return nil
	}
	parts := strings.Split(children, ";")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "{}")
		if i := strings.Index(p, "{"); i >= 0 {
			p = p[:i]
		}
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}
