package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rdmtools/vaultcheck/pkg/catalog"
)

// Options configures a reconciler.
type Options struct {
	// Host is the identity of the audit host; only storage leaves served
	// from this host are auditable.
	Host string

	// CollectionPrefix restricts the audit to one collection subtree
	// (the collection with this exact logical path plus descendants).
	// Empty means the whole zone.
	CollectionPrefix string

	// Excludes are doublestar glob patterns matched against
	// vault-relative paths; matching entries are skipped.
	Excludes []string

	// Logger receives progress and diagnostic messages. Defaults to
	// slog.Default when nil.
	Logger *slog.Logger
}

// checker carries the state shared by both reconcilers.
type checker struct {
	cat      catalog.Catalog
	sink     Sink
	host     string
	prefix   string
	excludes []string
	log      *slog.Logger
}

func newChecker(cat catalog.Catalog, sink Sink, opts Options) checker {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return checker{
		cat:      cat,
		sink:     sink,
		host:     opts.Host,
		prefix:   opts.CollectionPrefix,
		excludes: opts.Excludes,
		log:      log,
	}
}

// validatePrefix fails the run when the restricting collection does not
// exist in the catalog. A typo here would otherwise audit nothing and
// report success.
func (c *checker) validatePrefix(ctx context.Context) error {
	if c.prefix == "" {
		return nil
	}
	if _, err := c.cat.LookupCollection(ctx, c.prefix, nil); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("root collection %s not found", c.prefix)
		}
		return fmt.Errorf("lookup root collection %s: %w", c.prefix, err)
	}
	return nil
}

// excluded reports whether a vault-relative path matches any exclude
// pattern. Patterns use doublestar syntax against slash-separated paths.
func (c *checker) excluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range c.excludes {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (c *checker) emit(r Result) error {
	return c.sink.Emit(r)
}

// resolveVault verifies a declared vault path exists and resolves it to
// its real absolute path. A missing vault root is an operator
// misconfiguration and aborts the run.
func resolveVault(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("vault path %s: %w", path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("vault path %s does not exist: %w", path, err)
	}
	return real, nil
}

// logicalToPhysical maps a logical path onto the vault by substituting
// the leading zone prefix with the vault root.
func logicalToPhysical(logicalPath, zonePrefix, vault string) string {
	return strings.Replace(logicalPath, zonePrefix, vault, 1)
}

// physicalToLogical is the inverse substitution.
func physicalToLogical(physicalPath, vault, zonePrefix string) string {
	return strings.Replace(physicalPath, vault, zonePrefix, 1)
}
