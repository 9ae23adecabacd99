package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/finstack-labs/secpanel/internal/fsds"
	"github.com/finstack-labs/secpanel/internal/pipeline"
	"github.com/finstack-labs/secpanel/internal/state"
)

// runOptions holds options for the run command.
type runOptions struct {
	From  string
	To    string
	Force bool
}

// newRunCommand creates the run command.
func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline over a quarter range",
		Long: `Process every quarterly archive in the range: extract and transform each
statement into silver tables, join them into per-archive gold panels, then
aggregate all gold panels into the master panel.

Stages whose artifacts already exist are skipped unless --force is given.`,
		Example: `  # Process a single quarter
  secpanel run --from 2025q1 --to 2025q1

  # Process the full history and rebuild everything
  secpanel run --from 2009q1 --to 2025q2 --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "First quarter to process, e.g. 2009q1 (required)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Last quarter to process, e.g. 2025q2 (required)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Recompute stages even when artifacts exist")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runRun(cmd *cobra.Command, opts *runOptions) error {
	cfg := getConfig(cmd.Context())
	logger := getLogger(cmd.Context())

	quarters, err := fsds.QuarterRange(opts.From, opts.To)
	if err != nil {
		return err
	}

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

	startTime := time.Now()
	var summaries []*pipeline.ArchiveSummary

	for _, yq := range quarters {
		summary, err := p.ProcessArchive(cmd.Context(), run.ID, yq, opts.Force)
		if err != nil {
			_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
			return fmt.Errorf("archive %s: %w", yq, err)
		}
		summaries = append(summaries, summary)
	}

	panelRes, err := p.BuildPanel(cmd.Context(), run.ID)
	if err != nil {
		_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return err
	}

	if err := store.CompleteRun(run.ID, state.RunStatusCompleted, ""); err != nil {
		return err
	}

	renderRunSummary(cmd, summaries, panelRes)
	fmt.Fprintf(cmd.OutOrStdout(), "Run %s completed in %s\n",
		run.ID, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// renderRunSummary prints one row per (archive, stage).
func renderRunSummary(cmd *cobra.Command, summaries []*pipeline.ArchiveSummary, panelRes pipeline.StageResult) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Archive", "Stage", "Rows", "Unknown Tags", "Cached"})

	for _, s := range summaries {
		for _, st := range s.Stages {
			t.AppendRow(table.Row{s.Quarter, st.Stage, st.Rows, st.Unknown, st.Skipped})
		}
	}
	t.AppendRow(table.Row{"(all)", panelRes.Stage, panelRes.Rows, "", false})
	t.Render()
}
