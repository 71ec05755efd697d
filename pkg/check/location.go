package check

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rdmtools/vaultcheck/pkg/catalog"
)

// LocationCheck is the top-down reconciler: starting from a named storage
// location it resolves every locally auditable leaf under the location's
// root, then verifies each registered collection and data object placed
// on the leaf against the vault.
type LocationCheck struct {
	checker
	locationName string
}

// NewLocationCheck builds a top-down reconciler for the named storage
// location.
func NewLocationCheck(cat catalog.Catalog, sink Sink, locationName string, opts Options) *LocationCheck {
	return &LocationCheck{
		checker:      newChecker(cat, sink, opts),
		locationName: locationName,
	}
}

// Run drives the audit to completion, streaming results to the sink.
// The returned error is always a fatal configuration or environment
// fault; per-object findings never abort the run.
func (c *LocationCheck) Run(ctx context.Context) error {
	c.log.Info("checking storage location for consistency", "location", c.locationName)

	if err := c.validatePrefix(ctx); err != nil {
		return err
	}
	if err := c.sink.Head(); err != nil {
		return err
	}

	loc, err := c.cat.LookupLocation(ctx, c.locationName)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("storage location %s not found in catalog", c.locationName)
		}
		return fmt.Errorf("lookup storage location %s: %w", c.locationName, err)
	}

	root, ancestors, err := c.findRoot(ctx, loc)
	if err != nil {
		return err
	}
	leaves, err := c.findLeaves(ctx, loc, ancestors)
	if err != nil {
		return err
	}

	for _, leaf := range leaves {
		vault, err := resolveVault(leaf.Location.VaultPath)
		if err != nil {
			return err
		}
		placement := catalog.JoinPlacement(leaf.Placement)
		if err := c.checkCollections(ctx, root, vault, placement); err != nil {
			return err
		}
	}

	return nil
}

// checkCollections audits every collection registered under the root
// location (and, when the collection's directory exists, its data objects
// on the active placement path) against the vault rooted at vault.
func (c *LocationCheck) checkCollections(ctx context.Context, root *catalog.StorageLocation, vault, placement string) error {
	zonePrefix := "/" + root.Zone

	colls, err := c.cat.ListCollections(ctx, root, c.prefix)
	if err != nil {
		return fmt.Errorf("list collections under %s: %w", root.Name, err)
	}

	for _, coll := range colls {
		if c.excluded(strings.TrimPrefix(coll.LogicalPath, zonePrefix+"/")) {
			continue
		}

		collPath := logicalToPhysical(coll.LogicalPath, zonePrefix, vault)
		_, st, err := statPath(collPath)
		if err != nil {
			return fmt.Errorf("stat collection directory %s: %w", collPath, err)
		}
		if err := c.emit(Result{
			Kind:         KindCollection,
			LogicalPath:  coll.LogicalPath,
			PhysicalPath: collPath,
			Status:       st,
			Observed:     map[string]string{},
		}); err != nil {
			return err
		}
		if st != StatusOK {
			// Data objects cannot exist under a missing directory;
			// skip them and continue with the next collection.
			continue
		}

		c.log.Info("checking data objects of collection",
			"collection", coll.LogicalPath, "placement", placement)

		objs, err := c.cat.ListDataObjects(ctx, coll.ID, placement)
		if err != nil {
			return fmt.Errorf("list data objects of %s: %w", coll.LogicalPath, err)
		}
		for _, obj := range objs {
			if c.excluded(strings.TrimPrefix(obj.LogicalPath, zonePrefix+"/")) {
				continue
			}
			// The registered physical path is authoritative; it is not
			// recomputed from the logical path.
			st, observed, err := probeObject(obj, obj.PhysicalPath)
			if err != nil {
				return fmt.Errorf("probe %s: %w", obj.PhysicalPath, err)
			}
			if err := c.emit(Result{
				Kind:         KindDataObject,
				LogicalPath:  obj.LogicalPath,
				PhysicalPath: obj.PhysicalPath,
				Status:       st,
				Observed:     observed,
			}); err != nil {
				return err
			}
		}
	}

	return nil
}
