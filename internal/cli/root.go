// Package cli provides the secpanel command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finstack-labs/secpanel/internal/artifact"
	"github.com/finstack-labs/secpanel/internal/config"
	"github.com/finstack-labs/secpanel/internal/pipeline"
	"github.com/finstack-labs/secpanel/internal/state"
	"github.com/finstack-labs/secpanel/internal/tagmap"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "secpanel",
		Short: "secpanel - SEC financial statement panel builder",
		Long: `secpanel turns SEC Financial Statement Data Set quarterly archives into
an analysis-ready panel: one row per company and fiscal year with
canonical balance sheet, income statement, cash flow and share count
columns, plus data-quality flags.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if used := config.GetConfigFileUsed(); used != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", used)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./secpanel.yaml)")
	rootCmd.PersistentFlags().String("raw-dir", "", "Directory holding quarterly ZIP archives")
	rootCmd.PersistentFlags().String("silver-dir", "", "Directory for intermediate statement tables")
	rootCmd.PersistentFlags().String("gold-dir", "", "Directory for per-archive and master panels")
	rootCmd.PersistentFlags().String("state", "", "Path to state database")
	rootCmd.PersistentFlags().String("tag-map", "", "YAML file overriding the built-in tag maps")
	rootCmd.PersistentFlags().Bool("annual-only", false, "Restrict all stages to annual filings")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newTransformCommand())
	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newPanelCommand())
	rootCmd.AddCommand(newTagsCommand())
	rootCmd.AddCommand(newPublishCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		RawDir:    config.DefaultRawDir,
		SilverDir: config.DefaultSilverDir,
		GoldDir:   config.DefaultGoldDir,
		StatePath: config.DefaultStateFile,
	}
}

// getLogger retrieves the logger from the command context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// loadTagSet returns the tag maps in effect: the built-in defaults, or the
// override file when configured.
func loadTagSet(cfg *config.Config) (tagmap.Set, error) {
	if cfg.TagMapPath == "" {
		return tagmap.Defaults(), nil
	}
	return tagmap.LoadFile(cfg.TagMapPath)
}

// openState opens the run ledger, creating its directory if needed.
func openState(cfg *config.Config) (*state.SQLiteStore, error) {
	dir := filepath.Dir(cfg.StatePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// newPipeline assembles the pipeline from config.
func newPipeline(cfg *config.Config, store *state.SQLiteStore, logger *slog.Logger) (*pipeline.Pipeline, error) {
	tags, err := loadTagSet(cfg)
	if err != nil {
		return nil, err
	}
	artifacts := artifact.NewStore(cfg.SilverDir, cfg.GoldDir)
	return pipeline.New(cfg.RawDir, cfg.AnnualOnly, tags, artifacts, store, logger), nil
}

// quarterArg normalizes a positional archive argument: both "2025q1" and
// "2025q1.zip" are accepted.
func quarterArg(arg string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(arg)), ".zip")
}
