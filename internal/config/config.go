// Package config loads the vaultcheck configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. Command-line flags override every
// field.
type Config struct {
	// CatalogPath is the path to the catalog SQLite database.
	CatalogPath string `yaml:"catalog_path"`

	// Host is the default host identity used to decide which storage
	// leaves are locally auditable. Defaults to the machine's hostname
	// when empty.
	Host string `yaml:"host"`

	// Format is the default output format name. Defaults to "human".
	Format string `yaml:"format"`
}

// DefaultPath returns the default config file location, honoring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "vaultcheck", "config.yaml")
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = "human"
	}
}
