// Package pipeline orchestrates the full run for one or more quarterly
// archives: extract and transform each statement into silver artifacts, join
// them into the per-archive gold panel, and aggregate gold panels into the
// master panel. Stages are cached on disk; a stage whose artifact already
// exists is skipped unless the run is forced.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/finstack-labs/secpanel/internal/artifact"
	"github.com/finstack-labs/secpanel/internal/core"
	"github.com/finstack-labs/secpanel/internal/extract"
	"github.com/finstack-labs/secpanel/internal/fsds"
	"github.com/finstack-labs/secpanel/internal/panel"
	"github.com/finstack-labs/secpanel/internal/state"
	"github.com/finstack-labs/secpanel/internal/tagmap"
	"github.com/finstack-labs/secpanel/internal/transform"
)

// GoldStage is the artifact stage name for the per-archive panel.
const GoldStage = "gold"

// PanelStage is the artifact stage name for the master panel; its archive
// key is PanelArchive because it spans all archives.
const (
	PanelStage   = "panel"
	PanelArchive = "all"
)

// Pipeline wires the extract, transform, build and aggregate stages together.
type Pipeline struct {
	rawDir     string
	annualOnly bool
	tags       tagmap.Set
	artifacts  *artifact.Store
	store      *state.SQLiteStore
	logger     *slog.Logger
}

// New creates a pipeline. The state store may be nil, in which case runs and
// artifacts are not recorded and caching falls back to file existence alone.
func New(rawDir string, annualOnly bool, tags tagmap.Set, artifacts *artifact.Store, store *state.SQLiteStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		rawDir:     rawDir,
		annualOnly: annualOnly,
		tags:       tags,
		artifacts:  artifacts,
		store:      store,
		logger:     logger,
	}
}

// StageResult summarizes one stage of one archive.
type StageResult struct {
	Stage   string
	Rows    int
	Unknown int // distinct unknown tags, statement stages only
	Skipped bool
}

// ArchiveSummary summarizes a processed archive.
type ArchiveSummary struct {
	Quarter string
	Stages  []StageResult
}

// ArchivePath returns the expected ZIP location for a year-quarter.
func (p *Pipeline) ArchivePath(yq string) string {
	return filepath.Join(p.rawDir, yq+".zip")
}

// StatementOptions returns the transform filter options per statement.
// Balance sheet and income statement are annual by construction; cash flow
// and shares admit quarterly filings unless the run is annual-only.
func StatementOptions(kind core.StatementKind, annualOnly bool) transform.Options {
	switch kind {
	case core.BalanceSheet, core.IncomeStatement:
		return transform.Options{Forms: core.AnnualForms, FiscalPeriods: []string{"FY"}}
	default:
		if annualOnly {
			return transform.Options{Forms: core.AnnualForms, FiscalPeriods: []string{"FY"}}
		}
		return transform.Options{Forms: core.AllForms}
	}
}

func (p *Pipeline) metadataForms() core.FormSet {
	if p.annualOnly {
		return core.AnnualForms
	}
	return core.AllForms
}

func (p *Pipeline) recordArtifact(runID, yq, stage, path string, rows int) error {
	if p.store == nil || runID == "" {
		return nil
	}
	return p.store.RecordArtifact(runID, yq, stage, path, int64(rows))
}

// stageCached reports whether a stage can be skipped: its artifact file must
// exist, and when a state store is present the stage must also be recorded.
func (p *Pipeline) stageCached(yq, stage, path string) bool {
	if !artifact.Exists(path) {
		return false
	}
	if p.store == nil {
		return true
	}
	a, err := p.store.FindArtifact(yq, stage)
	if err != nil || a == nil {
		return false
	}
	return true
}

// ProcessArchive runs the silver and gold stages for one archive. runID ties
// recorded artifacts to the state ledger and may be empty.
func (p *Pipeline) ProcessArchive(ctx context.Context, runID, yq string, force bool) (*ArchiveSummary, error) {
	summary, err := p.TransformArchive(ctx, runID, yq, force)
	if err != nil {
		return nil, err
	}

	goldRes, err := p.BuildGold(runID, yq, force)
	if err != nil {
		return nil, err
	}
	summary.Stages = append(summary.Stages, goldRes)

	return summary, nil
}

// TransformArchive runs only the silver stages (the four statements plus
// metadata) for one archive.
func (p *Pipeline) TransformArchive(ctx context.Context, runID, yq string, force bool) (*ArchiveSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, err := fsds.Open(p.ArchivePath(yq))
	if err != nil {
		return nil, err
	}
	defer func() { _ = a.Close() }()

	summary := &ArchiveSummary{Quarter: yq}

	statements := []struct {
		kind  core.StatementKind
		tm    tagmap.TagMap
		units tagmap.UnitTable
	}{
		{core.BalanceSheet, p.tags.BalanceSheet, p.tags.MonetaryUnits},
		{core.IncomeStatement, p.tags.IncomeStatement, p.tags.MonetaryUnits},
		{core.CashFlow, p.tags.CashFlow, p.tags.MonetaryUnits},
		{core.SharesStatement, p.tags.Shares, p.tags.ShareUnits},
	}

	for _, st := range statements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.statementStage(a, runID, yq, st.kind, st.tm, st.units, force)
		if err != nil {
			return nil, err
		}
		summary.Stages = append(summary.Stages, res)
	}

	metaRes, err := p.metadataStage(a, runID, yq, force)
	if err != nil {
		return nil, err
	}
	summary.Stages = append(summary.Stages, metaRes)

	return summary, nil
}

// statementStage extracts and transforms one statement into its silver
// artifact, plus the unknown-tag diagnostic table.
func (p *Pipeline) statementStage(a *fsds.Archive, runID, yq string, kind core.StatementKind, tm tagmap.TagMap, units tagmap.UnitTable, force bool) (StageResult, error) {
	stage := kind.String()
	path := p.artifacts.WidePath(kind, yq)

	if !force && p.stageCached(yq, stage, path) {
		p.logger.Info("stage cached, skipping", "archive", yq, "stage", stage)
		return StageResult{Stage: stage, Skipped: true}, nil
	}

	var (
		facts []core.Fact
		err   error
	)
	if kind == core.SharesStatement {
		// Share counts are often presented outside the face statements, so
		// the shares stage feeds from all facts without a presentation join.
		facts, err = extract.AllFacts(a, p.logger)
	} else {
		facts, err = extract.Facts(a, kind, p.logger)
	}
	if err != nil {
		return StageResult{}, err
	}

	res := transform.Transform(facts, kind, tm, units, StatementOptions(kind, p.annualOnly), p.logger)

	if err := artifact.WriteWide(path, res.Wide); err != nil {
		return StageResult{}, err
	}

	unknown := 0
	if kind != core.SharesStatement {
		// The shares stage sees the whole archive, so its unmapped facts are
		// not a meaningful tag-map diagnostic.
		counts := transform.CountUnknown(res.Unknown)
		unknown = len(counts)
		if err := artifact.WriteTagCounts(p.artifacts.UnknownPath(kind, yq), counts); err != nil {
			return StageResult{}, err
		}
	}

	if err := p.recordArtifact(runID, yq, stage, path, len(res.Wide.Rows)); err != nil {
		return StageResult{}, err
	}

	p.logger.Info("stage complete",
		"archive", yq, "stage", stage, "rows", len(res.Wide.Rows), "unknown_tags", unknown)
	return StageResult{Stage: stage, Rows: len(res.Wide.Rows), Unknown: unknown}, nil
}

// metadataStage materializes the normalized filing-metadata table.
func (p *Pipeline) metadataStage(a *fsds.Archive, runID, yq string, force bool) (StageResult, error) {
	path := p.artifacts.MetaPath(yq)

	if !force && p.stageCached(yq, artifact.MetaStage, path) {
		p.logger.Info("stage cached, skipping", "archive", yq, "stage", artifact.MetaStage)
		return StageResult{Stage: artifact.MetaStage, Skipped: true}, nil
	}

	var fps []string
	if p.annualOnly {
		fps = []string{"FY"}
	}
	rows, err := extract.Metadata(a, p.metadataForms(), fps, p.logger)
	if err != nil {
		return StageResult{}, err
	}

	if err := artifact.WriteMeta(path, rows, yq); err != nil {
		return StageResult{}, err
	}
	if err := p.recordArtifact(runID, yq, artifact.MetaStage, path, len(rows)); err != nil {
		return StageResult{}, err
	}

	p.logger.Info("stage complete", "archive", yq, "stage", artifact.MetaStage, "rows", len(rows))
	return StageResult{Stage: artifact.MetaStage, Rows: len(rows)}, nil
}

// BuildGold joins the archive's silver artifacts into the per-archive panel.
// It reads silver tables from disk rather than memory so a gold rebuild works
// against cached silver stages.
func (p *Pipeline) BuildGold(runID, yq string, force bool) (StageResult, error) {
	path := p.artifacts.GoldPath(yq)

	if !force && p.stageCached(yq, GoldStage, path) {
		p.logger.Info("stage cached, skipping", "archive", yq, "stage", GoldStage)
		return StageResult{Stage: GoldStage, Skipped: true}, nil
	}

	meta, err := artifact.ReadMeta(p.artifacts.MetaPath(yq))
	if err != nil {
		return StageResult{}, err
	}
	bs, err := artifact.ReadWide(p.artifacts.WidePath(core.BalanceSheet, yq))
	if err != nil {
		return StageResult{}, err
	}
	is, err := artifact.ReadWide(p.artifacts.WidePath(core.IncomeStatement, yq))
	if err != nil {
		return StageResult{}, err
	}
	cf, err := artifact.ReadWide(p.artifacts.WidePath(core.CashFlow, yq))
	if err != nil {
		return StageResult{}, err
	}
	sh, err := artifact.ReadWide(p.artifacts.WidePath(core.SharesStatement, yq))
	if err != nil {
		return StageResult{}, err
	}

	pn := panel.BuildArchive(meta, bs, is, cf, sh, yq, p.logger)

	if err := artifact.WritePanel(path, pn); err != nil {
		return StageResult{}, err
	}
	if err := p.recordArtifact(runID, yq, GoldStage, path, len(pn.Rows)); err != nil {
		return StageResult{}, err
	}

	p.logger.Info("stage complete", "archive", yq, "stage", GoldStage, "rows", len(pn.Rows))
	return StageResult{Stage: GoldStage, Rows: len(pn.Rows)}, nil
}

// BuildPanel aggregates every per-archive gold panel into the master panel.
// The master panel is always rebuilt; its inputs are cheap to re-read and
// any new gold artifact invalidates it.
func (p *Pipeline) BuildPanel(ctx context.Context, runID string) (StageResult, error) {
	if err := ctx.Err(); err != nil {
		return StageResult{}, err
	}

	paths, err := p.artifacts.GoldPaths()
	if err != nil {
		return StageResult{}, err
	}
	if len(paths) == 0 {
		return StageResult{}, fmt.Errorf("no gold artifacts found in %s", p.artifacts.GoldDir)
	}

	panels := make([]core.Panel, 0, len(paths))
	for _, path := range paths {
		pn, err := artifact.ReadPanel(path)
		if err != nil {
			return StageResult{}, err
		}
		panels = append(panels, pn)
	}

	master := panel.Aggregate(panels, p.logger)

	path := p.artifacts.PanelPath()
	if err := artifact.WritePanel(path, master); err != nil {
		return StageResult{}, err
	}
	if err := p.recordArtifact(runID, PanelArchive, PanelStage, path, len(master.Rows)); err != nil {
		return StageResult{}, err
	}

	p.logger.Info("master panel built", "archives", len(paths), "rows", len(master.Rows))
	return StageResult{Stage: PanelStage, Rows: len(master.Rows)}, nil
}
