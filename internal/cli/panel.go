package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finstack-labs/secpanel/internal/state"
)

// newPanelCommand creates the panel command (master aggregation).
func newPanelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Aggregate all gold panels into the master panel",
		Long: `Concatenate every per-archive gold panel, re-deduplicate to one row per
company and fiscal year across archives, recompute quality flags, and write
the master panel.`,
		Example: `  secpanel panel`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			logger := getLogger(cmd.Context())

			store, err := openState(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			p, err := newPipeline(cfg, store, logger)
			if err != nil {
				return err
			}

			run, err := store.CreateRun()
			if err != nil {
				return err
			}

			res, err := p.BuildPanel(cmd.Context(), run.ID)
			if err != nil {
				_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
				return err
			}
			if err := store.CompleteRun(run.ID, state.RunStatusCompleted, ""); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "master panel built, %d rows\n", res.Rows)
			return nil
		},
	}
	return cmd
}
