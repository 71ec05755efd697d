package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rdmtools/vaultcheck/internal/catalogdb"
	"github.com/rdmtools/vaultcheck/internal/config"
	"github.com/rdmtools/vaultcheck/internal/format"
	"github.com/rdmtools/vaultcheck/pkg/check"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	locationName string
	vaultPath    string
	hostIdentity string
	collection   string
	outputPath   string
	formatName   string
	truncate     bool
	excludes     []string
	configPath   string
	catalogPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vaultcheck",
		Short: "Audit consistency between the metadata catalog and the physical vault",
		Long: `vaultcheck is a read-only auditor. Starting from a storage location it
verifies that every registered collection and data object exists on disk
with the expected size and checksum; starting from a physical path it
verifies that everything on disk is registered in the catalog.`,
		Version: fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date),
		Args:    cobra.NoArgs,
		RunE:    run,
	}

	rootCmd.Flags().StringVarP(&locationName, "location", "r", "", "Name of the storage location to audit (top-down)")
	rootCmd.Flags().StringVarP(&vaultPath, "vault", "v", "", "Physical path to audit (bottom-up)")
	rootCmd.Flags().StringVarP(&hostIdentity, "fqdn", "f", "", "Host identity of this audit host (default: hostname)")
	rootCmd.Flags().StringVarP(&collection, "collection", "c", "", "Restrict the audit to one collection subtree")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write results to file instead of stdout")
	rootCmd.Flags().StringVarP(&formatName, "format", "m", "human", fmt.Sprintf("Output format %v", format.Names()))
	rootCmd.Flags().BoolVarP(&truncate, "truncate", "t", false, "Truncate human output to the terminal width")
	rootCmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Exclude patterns, vault-relative (multiple allowed)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog SQLite database path")

	rootCmd.MarkFlagsMutuallyExclusive("location", "vault")
	rootCmd.MarkFlagsOneRequired("location", "vault")

	rootCmd.SetVersionTemplate("vaultcheck {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if catalogPath == "" {
		catalogPath = cfg.CatalogPath
	}
	if catalogPath == "" {
		return fmt.Errorf("no catalog database configured (use --catalog or catalog_path in the config file)")
	}

	host := hostIdentity
	if host == "" {
		host = cfg.Host
	}
	if host == "" {
		host, err = os.Hostname()
		if err != nil {
			return fmt.Errorf("determine host identity: %w", err)
		}
	}

	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		formatName = cfg.Format
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("open output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	sink, err := format.New(formatName, out, format.Options{Truncate: truncate})
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cat, err := catalogdb.Open(catalogPath)
	if err != nil {
		return err
	}
	defer cat.Close()

	opts := check.Options{
		Host:             host,
		CollectionPrefix: strings.TrimSuffix(collection, "/"),
		Excludes:         excludes,
		Logger:           logger,
	}

	ctx := cmd.Context()
	if locationName != "" {
		return check.NewLocationCheck(cat, sink, locationName, opts).Run(ctx)
	}
	return check.NewVaultCheck(cat, sink, vaultPath, opts).Run(ctx)
}

// loadConfig reads the config file. A missing file is only an error when
// the path was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit := cmd.Flags().Changed("config")
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return &config.Config{}, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &config.Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}
