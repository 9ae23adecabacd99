package extract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstack-labs/secpanel/internal/core"
	"github.com/finstack-labs/secpanel/internal/fsds"
	"github.com/finstack-labs/secpanel/internal/testutil"
)

func openFixture(t *testing.T, spec testutil.ArchiveSpec) *fsds.Archive {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "2025q1", spec)
	a, err := fsds.Open(filepath.Join(dir, "2025q1.zip"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestFactsPresentationJoin(t *testing.T) {
	a := openFixture(t, testutil.ArchiveSpec{
		Sub: [][]string{
			testutil.SubHeader,
			{"adsh-1", "100", "ACME", "10-K", "2024", "FY", "20241231", "20250301", "3711"},
			{"adsh-2", "200", "OTHER", "8-K", "2024", "FY", "20241231", "20250301", "3711"},
		},
		Pre: [][]string{
			testutil.PreHeader,
			{"adsh-1", "Assets", "BS"},
			{"adsh-1", "Revenues", "IS"},
			{"adsh-2", "Assets", "BS"},
		},
		Num: [][]string{
			testutil.NumHeader,
			{"adsh-1", "Assets", "20241231", "0", "USD", "500"},
			{"adsh-1", "Revenues", "20241231", "4", "USD", "900"},
			{"adsh-1", "Goodwill", "20241231", "0", "USD", "50"}, // not presented on BS
			{"adsh-2", "Assets", "20241231", "0", "USD", "777"},  // 8-K, outside allow-list
		},
	})

	logger := testutil.NewTestLogger(t)
	facts, err := Facts(a, core.BalanceSheet, logger)
	require.NoError(t, err)

	require.Len(t, facts, 1)
	f := facts[0]
	assert.Equal(t, "adsh-1", f.Adsh)
	assert.Equal(t, "Assets", f.Tag)
	assert.Equal(t, 500.0, f.Value)
	assert.Equal(t, 0, f.Qtrs)
	assert.Equal(t, "ACME", f.Name)
	assert.Equal(t, "2025q1.zip", f.SourceZip)
}

func TestFactsCashFlowDesignatorVariants(t *testing.T) {
	a := openFixture(t, testutil.ArchiveSpec{
		Sub: [][]string{
			testutil.SubHeader,
			{"adsh-1", "100", "ACME", "10-K", "2024", "FY", "20241231", "20250301", "3711"},
		},
		Pre: [][]string{
			testutil.PreHeader,
			{"adsh-1", "NetCashProvidedByUsedInOperatingActivities", "SCF"},
		},
		Num: [][]string{
			testutil.NumHeader,
			{"adsh-1", "NetCashProvidedByUsedInOperatingActivities", "20241231", "4", "USD", "120"},
		},
	})

	facts, err := Facts(a, core.CashFlow, nil)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, 120.0, facts[0].Value)
}

func TestFactsNoPresentationRows(t *testing.T) {
	a := openFixture(t, testutil.ArchiveSpec{
		Sub: [][]string{
			testutil.SubHeader,
			{"adsh-1", "100", "ACME", "10-K", "2024", "FY", "20241231", "20250301", "3711"},
		},
		Pre: [][]string{
			testutil.PreHeader,
			{"adsh-1", "Revenues", "IS"},
		},
		Num: [][]string{
			testutil.NumHeader,
			{"adsh-1", "Revenues", "20241231", "4", "USD", "900"},
		},
	})

	facts, err := Facts(a, core.BalanceSheet, nil)
	require.NoError(t, err)
	assert.Empty(t, facts)
	assert.NotNil(t, facts)
}

func TestFactsDropsUnparseableValues(t *testing.T) {
	a := openFixture(t, testutil.ArchiveSpec{
		Sub: [][]string{
			testutil.SubHeader,
			{"adsh-1", "100", "ACME", "10-K", "2024", "FY", "20241231", "20250301", "3711"},
		},
		Pre: [][]string{
			testutil.PreHeader,
			{"adsh-1", "Assets", "BS"},
		},
		Num: [][]string{
			testutil.NumHeader,
			{"adsh-1", "Assets", "20241231", "0", "USD", "not-a-number"},
			{"adsh-1", "Assets", "20241231", "0", "USD", `\N`},
			{"adsh-1", "Assets", "20241231", "0", "USD", "42"},
		},
	})

	facts, err := Facts(a, core.BalanceSheet, nil)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, 42.0, facts[0].Value)
}

func TestAllFactsSkipsPresentationJoin(t *testing.T) {
	a := openFixture(t, testutil.ArchiveSpec{
		Sub: [][]string{
			testutil.SubHeader,
			{"adsh-1", "100", "ACME", "10-Q", "2024", "Q2", "20240630", "20240801", "3711"},
		},
		Pre: [][]string{testutil.PreHeader}, // no presentation rows at all
		Num: [][]string{
			testutil.NumHeader,
			{"adsh-1", "CommonStockSharesOutstanding", "20240630", "0", "shares", "1000000"},
			{"adsh-1", "WeightedAverageNumberOfSharesOutstandingBasic", "20240630", "2", "shares", "995000"},
		},
	})

	facts, err := AllFacts(a, nil)
	require.NoError(t, err)
	assert.Len(t, facts, 2)
}

func TestMetadataSortedAndFiltered(t *testing.T) {
	a := openFixture(t, testutil.ArchiveSpec{
		Sub: [][]string{
			testutil.SubHeader,
			{"adsh-3", "200", "BETA", "10-K", "2024", "FY", "20241231", "20250302", "1000"},
			{"adsh-1", "100", "ACME", "10-K", "2024", "FY", "20241231", "20250301", "3711"},
			{"adsh-2", "100", "ACME", "10-Q", "2024", "Q2", "20240630", "20240801", "3711"},
		},
		Pre: [][]string{testutil.PreHeader},
		Num: [][]string{testutil.NumHeader},
	})

	rows, err := Metadata(a, core.AnnualForms, []string{"FY"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Sorted by (cik, fy, fp, filed, adsh).
	assert.Equal(t, "adsh-1", rows[0].Adsh)
	assert.Equal(t, "adsh-3", rows[1].Adsh)
}

func TestParseQtrs(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{"", 0},
		{"0", 0},
		{"4", 4},
		{" 2 ", 2},
		{"x", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseQtrs(tt.raw), "raw=%q", tt.raw)
	}
}
