package check

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rdmtools/vaultcheck/pkg/catalog"
)

// VaultCheck is the bottom-up reconciler: starting from a physical path
// it resolves the owning storage location, then walks the directory tree
// and verifies that every directory and file on disk is registered in the
// catalog under the expected logical name and placement path.
type VaultCheck struct {
	checker
	vaultPath string
}

// NewVaultCheck builds a bottom-up reconciler for the given physical path.
func NewVaultCheck(cat catalog.Catalog, sink Sink, vaultPath string, opts Options) *VaultCheck {
	return &VaultCheck{
		checker:   newChecker(cat, sink, opts),
		vaultPath: vaultPath,
	}
}

// Run drives the audit to completion, streaming results to the sink.
func (c *VaultCheck) Run(ctx context.Context) error {
	c.log.Info("checking vault for consistency", "path", c.vaultPath)

	if err := c.validatePrefix(ctx); err != nil {
		return err
	}
	if err := c.sink.Head(); err != nil {
		return err
	}

	// The start path is resolved the same way vault roots are, so walk
	// paths and the translation base agree even when the operator hands
	// us a symlinked path.
	start, err := resolveVault(c.vaultPath)
	if err != nil {
		return err
	}

	loc, err := c.findOwningLocation(ctx, start)
	if err != nil {
		return err
	}
	vault, err := resolveVault(loc.VaultPath)
	if err != nil {
		return err
	}

	root, ancestors, err := c.findRoot(ctx, loc)
	if err != nil {
		return err
	}
	placement := catalog.JoinPlacement(append(ancestors, loc.Name))
	zonePrefix := "/" + root.Zone

	walkRoot := start
	if c.prefix != "" {
		walkRoot = logicalToPhysical(c.prefix, zonePrefix, vault)
	}

	return c.walk(ctx, loc, walkRoot, vault, zonePrefix, placement)
}

// findOwningLocation climbs from path toward the filesystem root until a
// storage location on the audit host claims the path as its vault root.
// Reaching the filesystem root without a match is a configuration fault.
func (c *VaultCheck) findOwningLocation(ctx context.Context, path string) (*catalog.StorageLocation, error) {
	for {
		loc, err := c.cat.LookupLocationByPhysicalPath(ctx, path, c.host)
		if err == nil {
			return loc, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("lookup location for %s: %w", path, err)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return nil, fmt.Errorf("no storage location on host %s contains %s", c.host, c.vaultPath)
		}
		path = parent
	}
}

// walk visits every directory and file under walkRoot. Directories are
// matched against registered collections, files against registered data
// objects on the active placement path. Unregistered directories are
// still descended into: the files beneath them are real artifacts on disk
// and must each be reported.
func (c *VaultCheck) walk(ctx context.Context, loc *catalog.StorageLocation, walkRoot, vault, zonePrefix, placement string) error {
	return filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				c.log.Warn("cannot read directory, skipping subtree", "path", path)
				return fs.SkipDir
			}
			return walkErr
		}
		if path == walkRoot && d.IsDir() {
			return nil
		}

		if rel, err := filepath.Rel(vault, path); err == nil && c.excluded(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return c.checkDirectory(ctx, loc, path, vault, zonePrefix)
		}
		return c.checkFile(ctx, path, placement)
	})
}

// checkDirectory matches a directory against the collections registered
// on the owning location. A collection registered only on some other
// location does not legitimize the directory here.
func (c *VaultCheck) checkDirectory(ctx context.Context, loc *catalog.StorageLocation, path, vault, zonePrefix string) error {
	logical := physicalToLogical(path, vault, zonePrefix)

	st := StatusOK
	name := logical
	_, err := c.cat.LookupCollection(ctx, logical, loc)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("lookup collection %s: %w", logical, err)
		}
		st = StatusNotRegistered
		name = UnknownLogicalPath
	}

	return c.emit(Result{
		Kind:         KindDirectory,
		LogicalPath:  name,
		PhysicalPath: path,
		Status:       st,
		Observed:     map[string]string{},
	})
}

func (c *VaultCheck) checkFile(ctx context.Context, path, placement string) error {
	obj, err := c.cat.LookupDataObject(ctx, path, placement)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("lookup data object %s: %w", path, err)
		}
		return c.emit(Result{
			Kind:         KindFile,
			LogicalPath:  UnknownLogicalPath,
			PhysicalPath: path,
			Status:       StatusNotRegistered,
			Observed:     map[string]string{},
		})
	}

	st, observed, err := probeObject(*obj, path)
	if err != nil {
		return fmt.Errorf("probe %s: %w", path, err)
	}
	return c.emit(Result{
		Kind:         KindFile,
		LogicalPath:  obj.LogicalPath,
		PhysicalPath: path,
		Status:       st,
		Observed:     observed,
	})
}
