package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
catalog_path: /var/lib/vaultcheck/catalog.db
host: storage1.example.org
format: csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/vaultcheck/catalog.db", cfg.CatalogPath)
	require.Equal(t, "storage1.example.org", cfg.Host)
	require.Equal(t, "csv", cfg.Format)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog_path: /tmp/c.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "human", cfg.Format)
	require.Empty(t, cfg.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nosuch.yaml"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog_path: [unclosed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	require.Equal(t, "/custom/config/vaultcheck/config.yaml", DefaultPath())
}
