package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/finstack-labs/secpanel/internal/pipeline"
	"github.com/finstack-labs/secpanel/internal/state"
)

// newTransformCommand creates the transform command (silver stages only).
func newTransformCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "transform <quarter>",
		Short: "Run the silver stages for one archive",
		Long: `Extract and transform one quarterly archive into its wide statement
tables and metadata table, without building the gold panel.`,
		Example: `  secpanel transform 2025q1
  secpanel transform 2025q1.zip --force`,
		Args: cobra.ExactArgs(1),
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

			summary, err := p.TransformArchive(cmd.Context(), run.ID, yq, force)
			if err != nil {
				_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
				return err
			}
			if err := store.CompleteRun(run.ID, state.RunStatusCompleted, ""); err != nil {
				return err
			}

			renderStageSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Recompute stages even when artifacts exist")
	return cmd
}

func renderStageSummary(cmd *cobra.Command, summary *pipeline.ArchiveSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Archive", "Stage", "Rows", "Unknown Tags", "Cached"})
	for _, st := range summary.Stages {
		t.AppendRow(table.Row{summary.Quarter, st.Stage, st.Rows, st.Unknown, st.Skipped})
	}
	t.Render()
}
