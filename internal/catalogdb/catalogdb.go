// Package catalogdb implements the catalog query surface over a SQLite
// database: a locations table describing the storage hierarchy, plus
// collections and data_objects tables holding the registered namespace.
// The auditor only reads; it never mutates the catalog.
package catalogdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rdmtools/vaultcheck/pkg/catalog"
)

// DB is a SQLite-backed catalog.
type DB struct {
	db   *sql.DB
	path string
}

var _ catalog.Catalog = (*DB)(nil)

// Open opens the catalog database at path and ensures the schema exists.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog database %s: %w", path, err)
	}

	_, err = db.Exec(`
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS locations (
			id         INTEGER PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			parent     TEXT NOT NULL DEFAULT '',
			children   TEXT NOT NULL DEFAULT '',
			host       TEXT NOT NULL,
			vault_path TEXT NOT NULL DEFAULT '',
			zone       TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS collections (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS data_objects (
			id        INTEGER PRIMARY KEY,
			coll_id   INTEGER NOT NULL,
			name      TEXT NOT NULL,
			size      INTEGER NOT NULL,
			checksum  TEXT NOT NULL DEFAULT '',
			phy_path  TEXT NOT NULL,
			resc_hier TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_locations_vault ON locations(vault_path, host);
		CREATE INDEX IF NOT EXISTS idx_objects_coll ON data_objects(coll_id, resc_hier);
		CREATE INDEX IF NOT EXISTS idx_objects_phy ON data_objects(phy_path, resc_hier);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setup catalog database %s: %w", path, err)
	}

	return &DB{db: db, path: path}, nil
}

// Close closes the database connection.
func (c *DB) Close() error {
	return c.db.Close()
}

const locationColumns = "id, name, parent, children, host, vault_path, zone"

func scanLocation(row *sql.Row) (*catalog.StorageLocation, error) {
	var loc catalog.StorageLocation
	var children string
	err := row.Scan(&loc.ID, &loc.Name, &loc.Parent, &children,
		&loc.Host, &loc.VaultPath, &loc.Zone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	loc.Children = catalog.SplitChildren(children)
	return &loc, nil
}

func (c *DB) LookupLocation(ctx context.Context, name string) (*catalog.StorageLocation, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+locationColumns+" FROM locations WHERE name = ?", name)
	return scanLocation(row)
}

func (c *DB) LookupLocationByPhysicalPath(ctx context.Context, path, host string) (*catalog.StorageLocation, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+locationColumns+" FROM locations WHERE vault_path = ? AND host = ?",
		path, host)
	return scanLocation(row)
}

// collectionOnLocation restricts a collections query to collections with
// at least one data object whose placement path names the location as a
// component. Placement paths are semicolon-delimited location names.
const collectionOnLocation = `EXISTS (
	SELECT 1 FROM data_objects d
	WHERE d.coll_id = collections.id
	AND ';' || d.resc_hier || ';' LIKE '%;' || ? || ';%')`

func (c *DB) ListCollections(ctx context.Context, location *catalog.StorageLocation, prefix string) ([]catalog.CollectionEntry, error) {
	root := prefix
	if root == "" {
		root = "/" + location.Zone
	}
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, name FROM collections WHERE (name = ? OR name LIKE ?) AND "+
			collectionOnLocation+" ORDER BY name",
		root, root+"/%", location.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colls []catalog.CollectionEntry
	for rows.Next() {
		var coll catalog.CollectionEntry
		if err := rows.Scan(&coll.ID, &coll.LogicalPath); err != nil {
			return nil, err
		}
		colls = append(colls, coll)
	}
	return colls, rows.Err()
}

func (c *DB) ListDataObjects(ctx context.Context, collectionID int64, placement string) ([]catalog.DataObjectEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT c.name, d.name, d.size, d.checksum, d.phy_path, d.resc_hier
		FROM data_objects d JOIN collections c ON c.id = d.coll_id
		WHERE d.coll_id = ? AND d.resc_hier = ?
		ORDER BY d.name`,
		collectionID, placement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objs []catalog.DataObjectEntry
	for rows.Next() {
		obj, err := scanDataObject(rows)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, rows.Err()
}

func (c *DB) LookupCollection(ctx context.Context, logicalPath string, location *catalog.StorageLocation) (*catalog.CollectionEntry, error) {
	query := "SELECT id, name FROM collections WHERE name = ?"
	args := []any{logicalPath}
	if location != nil {
		query += " AND " + collectionOnLocation
		args = append(args, location.Name)
	}
	var coll catalog.CollectionEntry
	err := c.db.QueryRowContext(ctx, query, args...).
		Scan(&coll.ID, &coll.LogicalPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coll, nil
}

func (c *DB) LookupDataObject(ctx context.Context, physicalPath, placement string) (*catalog.DataObjectEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT c.name, d.name, d.size, d.checksum, d.phy_path, d.resc_hier
		FROM data_objects d JOIN collections c ON c.id = d.coll_id
		WHERE d.phy_path = ? AND d.resc_hier = ?
		LIMIT 1`,
		physicalPath, placement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, catalog.ErrNotFound
	}
	obj, err := scanDataObject(rows)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func scanDataObject(rows *sql.Rows) (catalog.DataObjectEntry, error) {
	var obj catalog.DataObjectEntry
	var collName string
	err := rows.Scan(&collName, &obj.Name, &obj.Size, &obj.Checksum,
		&obj.PhysicalPath, &obj.PlacementPath)
	if err != nil {
		return obj, err
	}
	obj.LogicalPath = collName + "/" + obj.Name
	return obj, nil
}
