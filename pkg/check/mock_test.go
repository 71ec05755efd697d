package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rdmtools/vaultcheck/pkg/catalog"
)

// mockCatalog is a func-field mock of catalog.Catalog.
type mockCatalog struct {
	lookupLocationFunc       func(ctx context.Context, name string) (*catalog.StorageLocation, error)
	lookupLocationByPathFunc func(ctx context.Context, path, host string) (*catalog.StorageLocation, error)
	listCollectionsFunc      func(ctx context.Context, location *catalog.StorageLocation, prefix string) ([]catalog.CollectionEntry, error)
	listDataObjectsFunc      func(ctx context.Context, collectionID int64, placement string) ([]catalog.DataObjectEntry, error)
	lookupCollectionFunc     func(ctx context.Context, logicalPath string, location *catalog.StorageLocation) (*catalog.CollectionEntry, error)
	lookupDataObjectFunc     func(ctx context.Context, physicalPath, placement string) (*catalog.DataObjectEntry, error)
}

func (m *mockCatalog) LookupLocation(ctx context.Context, name string) (*catalog.StorageLocation, error) {
	if m.lookupLocationFunc != nil {
		return m.lookupLocationFunc(ctx, name)
	}
	return nil, fmt.Errorf("LookupLocation not implemented")
}

func (m *mockCatalog) LookupLocationByPhysicalPath(ctx context.Context, path, host string) (*catalog.StorageLocation, error) {
	if m.lookupLocationByPathFunc != nil {
		return m.lookupLocationByPathFunc(ctx, path, host)
	}
	return nil, fmt.Errorf("LookupLocationByPhysicalPath not implemented")
}

func (m *mockCatalog) ListCollections(ctx context.Context, location *catalog.StorageLocation, prefix string) ([]catalog.CollectionEntry, error) {
	if m.listCollectionsFunc != nil {
		return m.listCollectionsFunc(ctx, location, prefix)
	}
	return nil, fmt.Errorf("ListCollections not implemented")
}

func (m *mockCatalog) ListDataObjects(ctx context.Context, collectionID int64, placement string) ([]catalog.DataObjectEntry, error) {
	if m.listDataObjectsFunc != nil {
		return m.listDataObjectsFunc(ctx, collectionID, placement)
	}
	return nil, fmt.Errorf("ListDataObjects not implemented")
}

func (m *mockCatalog) LookupCollection(ctx context.Context, logicalPath string, location *catalog.StorageLocation) (*catalog.CollectionEntry, error) {
	if m.lookupCollectionFunc != nil {
		return m.lookupCollectionFunc(ctx, logicalPath, location)
	}
	return nil, fmt.Errorf("LookupCollection not implemented")
}

func (m *mockCatalog) LookupDataObject(ctx context.Context, physicalPath, placement string) (*catalog.DataObjectEntry, error) {
	if m.lookupDataObjectFunc != nil {
		return m.lookupDataObjectFunc(ctx, physicalPath, placement)
	}
	return nil, fmt.Errorf("LookupDataObject not implemented")
}

// locationsByName wires lookupLocationFunc to a fixed location forest.
func locationsByName(locs ...*catalog.StorageLocation) func(context.Context, string) (*catalog.StorageLocation, error) {
	byName := make(map[string]*catalog.StorageLocation, len(locs))
	for _, loc := range locs {
		byName[loc.Name] = loc
	}
	return func(_ context.Context, name string) (*catalog.StorageLocation, error) {
		loc, ok := byName[name]
		if !ok {
			return nil, catalog.ErrNotFound
		}
		return loc, nil
	}
}

// captureSink records the result stream.
type captureSink struct {
	headCalls int
	results   []Result
}

func (s *captureSink) Head() error {
	s.headCalls++
	return nil
}

func (s *captureSink) Emit(r Result) error {
	s.results = append(s.results, r)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
