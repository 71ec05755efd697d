// Package digest computes file content digests in the catalog's native
// representations.
package digest

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"strings"
)

// chunkSize is the read granularity; files are never loaded whole.
const chunkSize = 8192

// sha256Prefix tags sha256 checksums in the catalog's stored form.
const sha256Prefix = "sha2:"

// Algorithm selects the digest algorithm. It is always taken from the
// catalog's stored checksum, never guessed from file contents.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// ErrAccessDenied reports that the file could not be opened for reading
// due to permissions. Any other open/read failure is returned as-is.
var ErrAccessDenied = errors.New("digest: access denied")

// Parse splits a catalog-stored checksum into its algorithm and the
// comparable value. sha256 checksums carry the "sha2:" prefix, which is
// stripped; md5 checksums are stored bare.
func Parse(stored string) (Algorithm, string) {
	if rest, ok := strings.CutPrefix(stored, sha256Prefix); ok {
		return SHA256, rest
	}
	return MD5, stored
}

// Compute streams the file at path through the given algorithm and
// returns the digest in the catalog's native encoding: raw digest bytes
// for md5, base64 text for sha256. Returns ErrAccessDenied when the file
// cannot be opened for reading.
func Compute(path string, alg Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", ErrAccessDenied
		}
		return "", err
	}
	defer f.Close()

	var h hash.Hash
	switch alg {
	case MD5:
		h = md5.New()
	case SHA256:
		h = sha256.New()
	default:
		return "", fmt.Errorf("digest: unsupported algorithm %q", alg)
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	sum := h.Sum(nil)
	if alg == SHA256 {
		return base64.StdEncoding.EncodeToString(sum), nil
	}
	return string(sum), nil
}
