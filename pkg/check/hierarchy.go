package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/rdmtools/vaultcheck/pkg/catalog"
)

// Leaf is a storage-capable location paired with its placement path,
// the root-first chain of location names ending in the leaf itself.
type Leaf struct {
	Location  *catalog.StorageLocation
	Placement []string
}

// findRoot climbs the location forest from loc to its topmost ancestor.
// The returned chain holds the names of the ancestors visited, root
// first, excluding loc itself.
func (c *checker) findRoot(ctx context.Context, loc *catalog.StorageLocation) (*catalog.StorageLocation, []string, error) {
	var ancestors []string
	node := loc
	for node.Parent != "" {
		parent, err := c.cat.LookupLocation(ctx, node.Parent)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, nil, fmt.Errorf("parent location %s of %s not in catalog", node.Parent, node.Name)
			}
			return nil, nil, fmt.Errorf("lookup parent of %s: %w", node.Name, err)
		}
		ancestors = append(ancestors, parent.Name)
		node = parent
	}
	// Reverse into root-first order.
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	c.log.Info("root location found", "location", node.Name)
	return node, ancestors, nil
}

// findLeaves walks the subtree under loc breadth-first and collects every
// storage-capable leaf served from the audit host, each with its
// placement path (ancestors extended with the leaf's own name). Leaves on
// other hosts are logged and skipped. The location forest is acyclic by
// catalog invariant, so an explicit work queue suffices.
func (c *checker) findLeaves(ctx context.Context, loc *catalog.StorageLocation, ancestors []string) ([]Leaf, error) {
	type pending struct {
		node      *catalog.StorageLocation
		ancestors []string
	}

	queue := []pending{{loc, ancestors}}
	var leaves []Leaf

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if !cur.node.IsLeaf() {
			chain := append(append([]string{}, cur.ancestors...), cur.node.Name)
			for _, name := range cur.node.Children {
				child, err := c.cat.LookupLocation(ctx, name)
				if err != nil {
					if errors.Is(err, catalog.ErrNotFound) {
						return nil, fmt.Errorf("child location %s of %s not in catalog", name, cur.node.Name)
					}
					return nil, fmt.Errorf("lookup child %s: %w", name, err)
				}
				queue = append(queue, pending{child, chain})
			}
			continue
		}

		if cur.node.Host != c.host {
			c.log.Info("skipping storage location on other host",
				"location", cur.node.Name, "host", cur.node.Host, "audit_host", c.host)
			continue
		}

		c.log.Info("storage location found",
			"location", cur.node.Name, "vault", cur.node.VaultPath)
		placement := append(append([]string{}, cur.ancestors...), cur.node.Name)
		leaves = append(leaves, Leaf{Location: cur.node, Placement: placement})
	}

	return leaves, nil
}
