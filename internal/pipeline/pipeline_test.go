package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstack-labs/secpanel/internal/artifact"
	"github.com/finstack-labs/secpanel/internal/state"
	"github.com/finstack-labs/secpanel/internal/tagmap"
	"github.com/finstack-labs/secpanel/internal/testutil"
)

// acmeQ1 is a complete annual filing: balanced balance sheet, income
// statement, cash flow and a share count.
var acmeQ1 = testutil.ArchiveSpec{
	Sub: [][]string{
		testutil.SubHeader,
		{"adsh-acme-1", "100", "ACME CORP", "10-K", "2024", "FY", "20241231", "20250301", "3711"},
	},
	Pre: [][]string{
		testutil.PreHeader,
		{"adsh-acme-1", "Assets", "BS"},
		{"adsh-acme-1", "Liabilities", "BS"},
		{"adsh-acme-1", "StockholdersEquity", "BS"},
		{"adsh-acme-1", "Revenues", "IS"},
		{"adsh-acme-1", "NetIncomeLoss", "IS"},
		{"adsh-acme-1", "NetCashProvidedByUsedInOperatingActivities", "CF"},
		{"adsh-acme-1", "NetCashProvidedByUsedInInvestingActivities", "CF"},
		{"adsh-acme-1", "NetCashProvidedByUsedInFinancingActivities", "CF"},
	},
	Num: [][]string{
		testutil.NumHeader,
		{"adsh-acme-1", "Assets", "20241231", "0", "USD", "1000000"},
		{"adsh-acme-1", "Liabilities", "20241231", "0", "USD", "600000"},
		{"adsh-acme-1", "StockholdersEquity", "20241231", "0", "USD", "400000"},
		{"adsh-acme-1", "Revenues", "20241231", "4", "USD", "500000"},
		{"adsh-acme-1", "NetIncomeLoss", "20241231", "4", "USD", "50000"},
		{"adsh-acme-1", "NetCashProvidedByUsedInOperatingActivities", "20241231", "4", "USD", "120000"},
		{"adsh-acme-1", "NetCashProvidedByUsedInInvestingActivities", "20241231", "4", "USD", "-70000"},
		{"adsh-acme-1", "NetCashProvidedByUsedInFinancingActivities", "20241231", "4", "USD", "-50000"},
		{"adsh-acme-1", "CommonStockSharesOutstanding", "20241231", "0", "shares", "10000"},
	},
}

// acmeQ2 amends the same fiscal year with restated assets.
var acmeQ2 = testutil.ArchiveSpec{
	Sub: [][]string{
		testutil.SubHeader,
		{"adsh-acme-2", "100", "ACME CORP", "10-K/A", "2024", "FY", "20241231", "20250601", "3711"},
	},
	Pre: [][]string{
		testutil.PreHeader,
		{"adsh-acme-2", "Assets", "BS"},
		{"adsh-acme-2", "Liabilities", "BS"},
		{"adsh-acme-2", "StockholdersEquity", "BS"},
	},
	Num: [][]string{
		testutil.NumHeader,
		{"adsh-acme-2", "Assets", "20241231", "0", "USD", "1100000"},
		{"adsh-acme-2", "Liabilities", "20241231", "0", "USD", "650000"},
		{"adsh-acme-2", "StockholdersEquity", "20241231", "0", "USD", "450000"},
	},
}

type testEnv struct {
	p     *Pipeline
	store *artifact.Store
}

func newTestEnv(t *testing.T, st *state.SQLiteStore, archives map[string]testutil.ArchiveSpec) testEnv {
	t.Helper()
	dir := t.TempDir()
	rawDir := filepath.Join(dir, "raw")
	require.NoError(t, os.MkdirAll(rawDir, 0o750))
	for yq, spec := range archives {
		testutil.WriteArchive(t, rawDir, yq, spec)
	}

	store := artifact.NewStore(filepath.Join(dir, "silver"), filepath.Join(dir, "gold"))
	p := New(rawDir, false, tagmap.Defaults(), store, st, testutil.NewTestLogger(t))
	return testEnv{p: p, store: store}
}

func openLedger(t *testing.T) *state.SQLiteStore {
	t.Helper()
	st := state.NewSQLiteStore()
	require.NoError(t, st.Open(":memory:"))
	require.NoError(t, st.Migrate())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func stageByName(t *testing.T, s *ArchiveSummary, name string) StageResult {
	t.Helper()
	for _, res := range s.Stages {
		if res.Stage == name {
			return res
		}
	}
	t.Fatalf("stage %s not in summary", name)
	return StageResult{}
}

func TestProcessArchiveEndToEnd(t *testing.T) {
	env := newTestEnv(t, nil, map[string]testutil.ArchiveSpec{"2025q1": acmeQ1})

	summary, err := env.p.ProcessArchive(context.Background(), "", "2025q1", false)
	require.NoError(t, err)
	assert.Equal(t, "2025q1", summary.Quarter)
	require.Len(t, summary.Stages, 6)

	for _, stage := range []string{"bs", "is", "cf", "shares", "meta", "gold"} {
		res := stageByName(t, summary, stage)
		assert.Equal(t, 1, res.Rows, stage)
		assert.False(t, res.Skipped, stage)
	}

	// Silver artifacts on disk with the expected content.
	bs, err := artifact.ReadWide(env.store.WidePath("bs", "2025q1"))
	require.NoError(t, err)
	require.Len(t, bs.Rows, 1)
	v, ok := bs.Rows[0].Value("TotalAssets")
	require.True(t, ok)
	assert.Equal(t, 1_000_000.0, v)

	// The gold panel is the joined row with quality flags recomputable on
	// read, so only values round-trip here.
	gold, err := artifact.ReadPanel(env.store.GoldPath("2025q1"))
	require.NoError(t, err)
	require.Len(t, gold.Rows, 1)
	row := gold.Rows[0]
	assert.Equal(t, "adsh-acme-1", row.Adsh)
	for field, expected := range map[string]float64{
		"TotalAssets": 1_000_000, "TotalLiabilities": 600_000, "ShareholdersEquity": 400_000,
		"Revenue": 500_000, "NetIncome": 50_000,
		"CFO": 120_000, "CFI": -70_000, "CFF": -50_000,
		"CommonSharesOutstanding": 10_000,
	} {
		got, ok := row.Value(field)
		require.True(t, ok, field)
		assert.Equal(t, expected, got, field)
	}

	// Unknown-tag diagnostics exist for the three monetary statements only.
	assert.True(t, artifact.Exists(env.store.UnknownPath("bs", "2025q1")))
	assert.False(t, artifact.Exists(env.store.UnknownPath("shares", "2025q1")))
}

func TestProcessArchiveCachesWithoutStore(t *testing.T) {
	env := newTestEnv(t, nil, map[string]testutil.ArchiveSpec{"2025q1": acmeQ1})
	ctx := context.Background()

	_, err := env.p.ProcessArchive(ctx, "", "2025q1", false)
	require.NoError(t, err)

	second, err := env.p.ProcessArchive(ctx, "", "2025q1", false)
	require.NoError(t, err)
	for _, res := range second.Stages {
		assert.True(t, res.Skipped, res.Stage)
	}

	forced, err := env.p.ProcessArchive(ctx, "", "2025q1", true)
	require.NoError(t, err)
	for _, res := range forced.Stages {
		assert.False(t, res.Skipped, res.Stage)
	}
}

func TestProcessArchiveCacheRequiresLedgerRow(t *testing.T) {
	st := openLedger(t)
	env := newTestEnv(t, st, map[string]testutil.ArchiveSpec{"2025q1": acmeQ1})
	ctx := context.Background()

	run, err := st.CreateRun()
	require.NoError(t, err)

	// Recorded run: second pass is fully cached.
	_, err = env.p.ProcessArchive(ctx, run.ID, "2025q1", false)
	require.NoError(t, err)
	second, err := env.p.ProcessArchive(ctx, run.ID, "2025q1", false)
	require.NoError(t, err)
	for _, res := range second.Stages {
		assert.True(t, res.Skipped, res.Stage)
	}

	// An artifact file with no ledger row does not count as cached. An empty
	// run ID skips recording, so the files exist but the ledger stays empty.
	envNoRows := newTestEnv(t, st, map[string]testutil.ArchiveSpec{"2024q4": acmeQ1})
	_, err = envNoRows.p.TransformArchive(ctx, "", "2024q4", false)
	require.NoError(t, err)
	a, err := st.FindArtifact("2024q4", "bs")
	require.NoError(t, err)
	require.Nil(t, a)
	// ...and the next pass recomputes.
	again, err := envNoRows.p.TransformArchive(ctx, "", "2024q4", false)
	require.NoError(t, err)
	for _, res := range again.Stages {
		assert.False(t, res.Skipped, res.Stage)
	}
}

func TestProcessArchiveMissingZip(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	_, err := env.p.ProcessArchive(context.Background(), "", "2025q1", false)
	assert.Error(t, err)
}

func TestProcessArchiveCancelledContext(t *testing.T) {
	env := newTestEnv(t, nil, map[string]testutil.ArchiveSpec{"2025q1": acmeQ1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := env.p.ProcessArchive(ctx, "", "2025q1", false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildPanelAggregatesArchives(t *testing.T) {
	env := newTestEnv(t, nil, map[string]testutil.ArchiveSpec{
		"2025q1": acmeQ1,
		"2025q2": acmeQ2,
	})
	ctx := context.Background()

	for _, yq := range []string{"2025q1", "2025q2"} {
		_, err := env.p.ProcessArchive(ctx, "", yq, false)
		require.NoError(t, err)
	}

	res, err := env.p.BuildPanel(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, PanelStage, res.Stage)
	assert.Equal(t, 1, res.Rows)

	master, err := artifact.ReadPanel(env.store.PanelPath())
	require.NoError(t, err)
	require.Len(t, master.Rows, 1)
	// The later-filed amendment supersedes the original for (cik, fy).
	row := master.Rows[0]
	assert.Equal(t, "adsh-acme-2", row.Adsh)
	assert.Equal(t, "2025q2", row.SourceZip)
	v, ok := row.Value("TotalAssets")
	require.True(t, ok)
	assert.Equal(t, 1_100_000.0, v)
}

func TestBuildPanelWithoutGoldArtifacts(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	_, err := env.p.BuildPanel(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no gold artifacts")
}

func TestLedgerRecordsStageArtifacts(t *testing.T) {
	st := openLedger(t)
	env := newTestEnv(t, st, map[string]testutil.ArchiveSpec{"2025q1": acmeQ1})

	run, err := st.CreateRun()
	require.NoError(t, err)

	_, err = env.p.ProcessArchive(context.Background(), run.ID, "2025q1", false)
	require.NoError(t, err)

	artifacts, err := st.ListArtifacts("2025q1")
	require.NoError(t, err)
	require.Len(t, artifacts, 6)

	a, err := st.FindArtifact("2025q1", GoldStage)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, run.ID, a.RunID)
	assert.Equal(t, int64(1), a.RowCount)
	assert.Equal(t, env.store.GoldPath("2025q1"), a.Path)
}

func TestStatementOptions(t *testing.T) {
	opts := StatementOptions("bs", false)
	assert.True(t, opts.Forms.Contains("10-K"))
	assert.False(t, opts.Forms.Contains("10-Q"))
	assert.Equal(t, []string{"FY"}, opts.FiscalPeriods)

	opts = StatementOptions("cf", false)
	assert.True(t, opts.Forms.Contains("10-Q"))
	assert.Empty(t, opts.FiscalPeriods)

	opts = StatementOptions("shares", true)
	assert.False(t, opts.Forms.Contains("10-Q"))
	assert.Equal(t, []string{"FY"}, opts.FiscalPeriods)
}
