package cli

import (
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/finstack-labs/secpanel/internal/core"
	"github.com/finstack-labs/secpanel/internal/extract"
	"github.com/finstack-labs/secpanel/internal/fsds"
	"github.com/finstack-labs/secpanel/internal/pipeline"
	"github.com/finstack-labs/secpanel/internal/tagmap"
	"github.com/finstack-labs/secpanel/internal/transform"
)

// newTagsCommand creates the tags command: unknown-tag frequency diagnostics
// for tag-map maintenance. High-frequency unknown tags are synonym
// candidates for the tag-map override file.
func newTagsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "tags <quarter>",
		Short: "Report unknown statement tags for one archive",
		Long: `Extract and transform one archive in memory and report the tags that
survived every filter but had no canonical mapping, ordered by frequency.`,
		Example: `  secpanel tags 2025q1
  secpanel tags 2025q1 --limit 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())
			logger := getLogger(cmd.Context())
			yq := quarterArg(args[0])

			tags, err := loadTagSet(cfg)
			if err != nil {
				return err
			}

			a, err := fsds.Open(filepath.Join(cfg.RawDir, yq+".zip"))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			statements := []struct {
				kind core.StatementKind
				tm   tagmap.TagMap
			}{
				{core.BalanceSheet, tags.BalanceSheet},
				{core.IncomeStatement, tags.IncomeStatement},
				{core.CashFlow, tags.CashFlow},
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Statement", "Tag", "Count"})

			for _, st := range statements {
				facts, err := extract.Facts(a, st.kind, logger)
				if err != nil {
					return err
				}
				res := transform.Transform(facts, st.kind, st.tm, tags.MonetaryUnits,
					pipeline.StatementOptions(st.kind, cfg.AnnualOnly), logger)

				counts := transform.CountUnknown(res.Unknown)
				if limit > 0 && len(counts) > limit {
					counts = counts[:limit]
				}
				for _, tc := range counts {
					t.AppendRow(table.Row{st.kind.String(), tc.Tag, tc.Count})
				}
			}

			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 30, "Maximum unknown tags to show per statement (0 for all)")
	return cmd
}
