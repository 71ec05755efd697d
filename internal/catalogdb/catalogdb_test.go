package catalogdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rdmtools/vaultcheck/pkg/catalog"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *DB, stmt string, args ...any) {
	t.Helper()
	_, err := db.db.Exec(stmt, args...)
	require.NoError(t, err)
}

func seedFixture(t *testing.T, db *DB, vault string) {
	t.Helper()
	seed(t, db, `INSERT INTO locations (id, name, parent, children, host, vault_path, zone) VALUES
		(1, 'rootResc', '', 'demoResc{}', 'provider.example.org', '', 'zoneA'),
		(2, 'demoResc', 'rootResc', '', 'audit.example.org', ?, 'zoneA')`, vault)
	seed(t, db, `INSERT INTO collections (id, name) VALUES
		(10, '/zoneA'),
		(11, '/zoneA/coll1'),
		(12, '/zoneA/coll1/sub'),
		(13, '/zoneA/coll2')`)
	// coll2 holds data only on farResc, outside the rootResc tree.
	seed(t, db, `INSERT INTO data_objects (id, coll_id, name, size, checksum, phy_path, resc_hier) VALUES
		(100, 11, 'file.txt', 13, 'sha2:3/1gIbsr1bCvZ2KQgJ7DpTGR3YHH9wpLKGiKNiGCmG8=', ?, 'rootResc;demoResc'),
		(101, 11, 'nochk.txt', 5, '', ?, 'rootResc;demoResc'),
		(102, 11, 'other.txt', 5, '', ?, 'rootResc;otherResc'),
		(103, 12, 'nested.txt', 5, '', ?, 'rootResc;demoResc'),
		(104, 13, 'far.txt', 5, '', '/vault/far/coll2/far.txt', 'farResc')`,
		vault+"/coll1/file.txt", vault+"/coll1/nochk.txt", vault+"/coll1/other.txt",
		vault+"/coll1/sub/nested.txt")
}

func TestLookupLocation(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db, "/vault/demo")
	ctx := context.Background()

	loc, err := db.LookupLocation(ctx, "demoResc")
	require.NoError(t, err)
	require.Equal(t, int64(2), loc.ID)
	require.Equal(t, "rootResc", loc.Parent)
	require.Equal(t, "audit.example.org", loc.Host)
	require.Equal(t, "/vault/demo", loc.VaultPath)
	require.Equal(t, "zoneA", loc.Zone)
	require.True(t, loc.IsLeaf())

	root, err := db.LookupLocation(ctx, "rootResc")
	require.NoError(t, err)
	require.Equal(t, []string{"demoResc"}, root.Children)

	_, err = db.LookupLocation(ctx, "nosuch")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestLookupLocationByPhysicalPath(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db, "/vault/demo")
	ctx := context.Background()

	loc, err := db.LookupLocationByPhysicalPath(ctx, "/vault/demo", "audit.example.org")
	require.NoError(t, err)
	require.Equal(t, "demoResc", loc.Name)

	_, err = db.LookupLocationByPhysicalPath(ctx, "/vault/demo", "other.example.org")
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = db.LookupLocationByPhysicalPath(ctx, "/vault/demo/coll1", "audit.example.org")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestListCollections(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db, "/vault/demo")
	ctx := context.Background()

	rootLoc, err := db.LookupLocation(ctx, "rootResc")
	require.NoError(t, err)

	// Only collections with data under the location's tree are listed;
	// /zoneA is empty and /zoneA/coll2 lives on farResc.
	all, err := db.ListCollections(ctx, rootLoc, "")
	require.NoError(t, err)
	require.Equal(t, []string{"/zoneA/coll1", "/zoneA/coll1/sub"}, collectionNames(all))

	scoped, err := db.ListCollections(ctx, rootLoc, "/zoneA/coll1")
	require.NoError(t, err)
	require.Equal(t, []string{"/zoneA/coll1", "/zoneA/coll1/sub"}, collectionNames(scoped))

	demoLoc, err := db.LookupLocation(ctx, "demoResc")
	require.NoError(t, err)
	onDemo, err := db.ListCollections(ctx, demoLoc, "")
	require.NoError(t, err)
	require.Equal(t, []string{"/zoneA/coll1", "/zoneA/coll1/sub"}, collectionNames(onDemo))
}

func collectionNames(colls []catalog.CollectionEntry) []string {
	names := make([]string, len(colls))
	for i, coll := range colls {
		names[i] = coll.LogicalPath
	}
	return names
}

func TestListDataObjectsFiltersByPlacement(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db, "/vault/demo")
	ctx := context.Background()

	objs, err := db.ListDataObjects(ctx, 11, "rootResc;demoResc")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	require.Equal(t, "/zoneA/coll1/file.txt", objs[0].LogicalPath)
	require.Equal(t, int64(13), objs[0].Size)
	require.True(t, objs[0].HasChecksum())
	require.Equal(t, "/zoneA/coll1/nochk.txt", objs[1].LogicalPath)
	require.False(t, objs[1].HasChecksum())

	none, err := db.ListDataObjects(ctx, 11, "rootResc;wrongResc")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestLookupCollection(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db, "/vault/demo")
	ctx := context.Background()

	coll, err := db.LookupCollection(ctx, "/zoneA/coll1", nil)
	require.NoError(t, err)
	require.Equal(t, int64(11), coll.ID)

	_, err = db.LookupCollection(ctx, "/zoneA/nosuch", nil)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestLookupCollectionScopedToLocation(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db, "/vault/demo")
	ctx := context.Background()

	demoLoc, err := db.LookupLocation(ctx, "demoResc")
	require.NoError(t, err)

	coll, err := db.LookupCollection(ctx, "/zoneA/coll1", demoLoc)
	require.NoError(t, err)
	require.Equal(t, int64(11), coll.ID)

	// coll2 is registered, but all of its data lives on farResc.
	_, err = db.LookupCollection(ctx, "/zoneA/coll2", nil)
	require.NoError(t, err)
	_, err = db.LookupCollection(ctx, "/zoneA/coll2", demoLoc)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestLookupDataObject(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db, "/vault/demo")
	ctx := context.Background()

	obj, err := db.LookupDataObject(ctx, "/vault/demo/coll1/file.txt", "rootResc;demoResc")
	require.NoError(t, err)
	require.Equal(t, "/zoneA/coll1/file.txt", obj.LogicalPath)
	require.Equal(t, "sha2:3/1gIbsr1bCvZ2KQgJ7DpTGR3YHH9wpLKGiKNiGCmG8=", obj.Checksum)

	// The same physical path on a different placement is not a match.
	_, err = db.LookupDataObject(ctx, "/vault/demo/coll1/file.txt", "rootResc;otherResc")
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = db.LookupDataObject(ctx, "/vault/demo/coll1/nope.txt", "rootResc;demoResc")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}
