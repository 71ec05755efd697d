package check

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/rdmtools/vaultcheck/internal/digest"
	"github.com/rdmtools/vaultcheck/pkg/catalog"
)

// statPath stats a path with a three-way outcome: present, missing, or
// permission-denied. Any other OS error is returned and aborts the run;
// it indicates an environment fault, not a consistency finding.
func statPath(path string) (fs.FileInfo, Status, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info, StatusOK, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, StatusNotExisting, nil
	case errors.Is(err, fs.ErrPermission):
		return nil, StatusAccessDenied, nil
	default:
		return nil, "", err
	}
}

// probeObject verifies one catalog entry against its physical path:
// existence, then size, then checksum, short-circuiting on the first
// failure. The returned map carries expected/observed values only for
// mismatch statuses.
func probeObject(entry catalog.DataObjectEntry, physicalPath string) (Status, map[string]string, error) {
	info, st, err := statPath(physicalPath)
	if err != nil {
		return "", nil, err
	}
	if st != StatusOK {
		return st, map[string]string{}, nil
	}

	// Sparse files are compared by logical size only; block allocation
	// is not inspected.
	if entry.Size != info.Size() {
		return StatusFileSizeMismatch, map[string]string{
			ExpectedSize: strconv.FormatInt(entry.Size, 10),
			ObservedSize: strconv.FormatInt(info.Size(), 10),
		}, nil
	}

	if !entry.HasChecksum() {
		return StatusNoChecksum, map[string]string{}, nil
	}

	alg, expected := digest.Parse(entry.Checksum)
	observed, err := digest.Compute(physicalPath, alg)
	if err != nil {
		if errors.Is(err, digest.ErrAccessDenied) {
			return StatusAccessDenied, map[string]string{}, nil
		}
		return "", nil, err
	}
	if observed != expected {
		return StatusChecksumMismatch, map[string]string{
			ExpectedChecksum: expected,
			ObservedChecksum: observed,
		}, nil
	}

	return StatusOK, map[string]string{}, nil
}
