package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finstack-labs/secpanel/internal/artifact"
	"github.com/finstack-labs/secpanel/internal/warehouse"
)

// newPublishCommand creates the publish command: load gold artifacts into the
// configured warehouse target.
func newPublishCommand() *cobra.Command {
	var includeArchives bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Load the master panel into the warehouse target",
		Long: `Publish the master panel (and optionally every per-archive gold panel)
into the warehouse configured under target in secpanel.yaml. Supported
drivers are duckdb and postgres.`,
		Example: `  secpanel publish
  secpanel publish --archives`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			logger := getLogger(cmd.Context())

			if cfg.Target == nil {
				return fmt.Errorf("no warehouse target configured (set target in %s)", "secpanel.yaml")
			}

			artifacts := artifact.NewStore(cfg.SilverDir, cfg.GoldDir)

			panelPath := artifacts.PanelPath()
			if !artifact.Exists(panelPath) {
				return fmt.Errorf("master panel not found at %s (run secpanel panel first)", panelPath)
			}

			pub, err := warehouse.New(*cfg.Target)
			if err != nil {
				return err
			}
			if err := pub.Connect(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = pub.Close() }()

			paths := []string{panelPath}
			if includeArchives {
				goldPaths, err := artifacts.GoldPaths()
				if err != nil {
					return err
				}
				paths = append(paths, goldPaths...)
			}

			for _, path := range paths {
				tableName := warehouse.TableName(filepath.Base(path))
				if err := pub.LoadCSV(cmd.Context(), tableName, path); err != nil {
					return fmt.Errorf("failed to publish %s: %w", tableName, err)
				}
				logger.Info("published table", "table", tableName, "source", path)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %d tables to %s\n", len(paths), cfg.Target.Driver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeArchives, "archives", false, "Also publish every per-archive gold panel")
	return cmd
}
