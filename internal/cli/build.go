package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finstack-labs/secpanel/internal/state"
)

// newBuildCommand creates the build command (gold stage for one archive).
func newBuildCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "build <quarter>",
		Short: "Build the gold panel for one archive",
		Long: `Join one archive's silver tables into its per-archive gold panel. The
silver stages must have been materialized first (secpanel transform).`,
		Example: `  secpanel build 2025q1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())
			logger := getLogger(cmd.Context())
			yq := quarterArg(args[0])

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

			res, err := p.BuildGold(run.ID, yq, force)
			if err != nil {
				_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
				return err
			}
			if err := store.CompleteRun(run.ID, state.RunStatusCompleted, ""); err != nil {
				return err
			}

			if res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: gold panel cached, skipped\n", yq)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: gold panel built, %d rows\n", yq, res.Rows)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when the artifact exists")
	return cmd
}
