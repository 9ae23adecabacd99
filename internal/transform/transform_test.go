package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstack-labs/secpanel/internal/core"
	"github.com/finstack-labs/secpanel/internal/tagmap"
)

var testBS = tagmap.TagMap{Fields: []tagmap.Field{
	{Canonical: "TotalAssets", Synonyms: []string{"Assets"}},
	{Canonical: "TotalLiabilities", Synonyms: []string{"Liabilities"}},
	{Canonical: "ShareholdersEquity", Synonyms: []string{"StockholdersEquity", "Equity"}},
}}

var testUnits = tagmap.NewUnitTable(map[string]float64{
	"USD":   1,
	"USDth": 1_000,
})

func annualFact(adsh, tag string, value float64) core.Fact {
	return core.Fact{
		FilingMeta: core.FilingMeta{
			Adsh: adsh, CIK: "100", Name: "ACME", Form: "10-K",
			FY: "2024", FP: "FY", Period: "20241231", Filed: "20250301",
		},
		Tag: tag, DDate: "20241231", Qtrs: 0, UOM: "USD", Value: value,
	}
}

func TestTransformEndToEnd(t *testing.T) {
	facts := []core.Fact{
		annualFact("adsh-1", "Assets", 500),
		annualFact("adsh-1", "Equity", 199),
		annualFact("adsh-1", "StockholdersEquity", 200),
	}

	res := Transform(facts, core.BalanceSheet, testBS, testUnits, Options{}, nil)

	assert.Equal(t, testBS.Canonicals(), res.Wide.Fields)
	require.Len(t, res.Wide.Rows, 1)

	row := res.Wide.Rows[0]
	v, ok := row.Value("TotalAssets")
	require.True(t, ok)
	assert.Equal(t, 500.0, v)

	// StockholdersEquity outranks Equity despite the smaller gap in values.
	v, ok = row.Value("ShareholdersEquity")
	require.True(t, ok)
	assert.Equal(t, 200.0, v)

	_, ok = row.Value("TotalLiabilities")
	assert.False(t, ok)

	assert.Empty(t, res.Unknown)
}

func TestCollisionResolutionOrderIndependent(t *testing.T) {
	base := []core.Fact{
		annualFact("adsh-1", "StockholdersEquity", 200),
		annualFact("adsh-1", "Equity", 999),
		annualFact("adsh-2", "Assets", -300),
		annualFact("adsh-2", "Assets", 100),
	}
	reversed := []core.Fact{base[3], base[2], base[1], base[0]}

	a := Transform(base, core.BalanceSheet, testBS, testUnits, Options{}, nil)
	b := Transform(reversed, core.BalanceSheet, testBS, testUnits, Options{}, nil)

	require.Equal(t, len(a.Wide.Rows), len(b.Wide.Rows))
	for i := range a.Wide.Rows {
		assert.Equal(t, a.Wide.Rows[i].Adsh, b.Wide.Rows[i].Adsh)
		assert.Equal(t, a.Wide.Rows[i].Values, b.Wide.Rows[i].Values)
	}

	// Rank wins over magnitude; equal ranks fall back to |value|.
	v, _ := a.Wide.Rows[0].Value("ShareholdersEquity")
	assert.Equal(t, 200.0, v)
	v, _ = a.Wide.Rows[1].Value("TotalAssets")
	assert.Equal(t, -300.0, v)
}

func TestTemporalAlignmentBalanceSheet(t *testing.T) {
	wrongDate := annualFact("adsh-1", "Assets", 1)
	wrongDate.DDate = "20240930"

	duration := annualFact("adsh-2", "Assets", 2)
	duration.Qtrs = 4

	ok := annualFact("adsh-3", "Assets", 3)

	res := Transform([]core.Fact{wrongDate, duration, ok},
		core.BalanceSheet, testBS, testUnits, Options{}, nil)

	require.Len(t, res.Wide.Rows, 1)
	assert.Equal(t, "adsh-3", res.Wide.Rows[0].Adsh)
}

func TestTemporalAlignmentDurations(t *testing.T) {
	tm := tagmap.TagMap{Fields: []tagmap.Field{
		{Canonical: "Revenue", Synonyms: []string{"Revenues"}},
	}}

	mk := func(adsh, form string, qtrs int) core.Fact {
		f := annualFact(adsh, "Revenues", 100)
		f.Form = form
		f.Qtrs = qtrs
		return f
	}

	facts := []core.Fact{
		mk("adsh-1", "10-K", 4), // annual, kept
		mk("adsh-2", "10-K", 1), // annual form with quarterly duration, dropped
		mk("adsh-3", "10-Q", 2), // quarterly, kept
		mk("adsh-4", "10-Q", 4), // quarterly form with annual duration, dropped
		mk("adsh-5", "10-Q", 0), // instant on a flow statement, dropped
	}

	res := Transform(facts, core.IncomeStatement, tm, testUnits, Options{}, nil)

	var kept []string
	for _, row := range res.Wide.Rows {
		kept = append(kept, row.Adsh)
	}
	assert.Equal(t, []string{"adsh-1", "adsh-3"}, kept)
}

func TestTemporalAlignmentShares(t *testing.T) {
	tm := tagmap.TagMap{Fields: []tagmap.Field{
		{Canonical: "CommonSharesOutstanding", Synonyms: []string{"CommonStockSharesOutstanding"}},
	}}
	units := tagmap.NewUnitTable(map[string]float64{"shares": 1})

	instant := annualFact("adsh-1", "CommonStockSharesOutstanding", 1_000)
	instant.UOM = "shares"

	weighted := annualFact("adsh-2", "CommonStockSharesOutstanding", 990)
	weighted.UOM = "shares"
	weighted.Qtrs = 4

	tooLong := annualFact("adsh-3", "CommonStockSharesOutstanding", 980)
	tooLong.UOM = "shares"
	tooLong.Qtrs = 5

	res := Transform([]core.Fact{instant, weighted, tooLong},
		core.SharesStatement, tm, units, Options{}, nil)
	assert.Len(t, res.Wide.Rows, 2)
}

func TestUnitNormalization(t *testing.T) {
	thousands := annualFact("adsh-1", "Assets", 500)
	thousands.UOM = "USDth"

	unknown := annualFact("adsh-2", "Assets", 500)
	unknown.UOM = "CAD"

	res := Transform([]core.Fact{thousands, unknown},
		core.BalanceSheet, testBS, testUnits, Options{}, nil)

	// Unrecognized units are excluded, not defaulted to scale 1.
	require.Len(t, res.Wide.Rows, 1)
	v, _ := res.Wide.Rows[0].Value("TotalAssets")
	assert.Equal(t, 500_000.0, v)
}

func TestFormAndFiscalPeriodFilter(t *testing.T) {
	quarterly := annualFact("adsh-1", "Assets", 1)
	quarterly.Form = "10-Q"
	quarterly.FP = "Q2"

	annual := annualFact("adsh-2", "Assets", 2)

	opts := Options{Forms: core.AnnualForms, FiscalPeriods: []string{"FY"}}
	res := Transform([]core.Fact{quarterly, annual}, core.BalanceSheet, testBS, testUnits, opts, nil)

	require.Len(t, res.Wide.Rows, 1)
	assert.Equal(t, "adsh-2", res.Wide.Rows[0].Adsh)
}

func TestUnknownTagsSideChannel(t *testing.T) {
	known := annualFact("adsh-1", "Assets", 1)
	mystery := annualFact("adsh-1", "AssetsNoncurrentOther", 2)

	res := Transform([]core.Fact{known, mystery}, core.BalanceSheet, testBS, testUnits, Options{}, nil)

	require.Len(t, res.Unknown, 1)
	assert.Equal(t, "AssetsNoncurrentOther", res.Unknown[0].Tag)
	// Unknown facts never leak into canonical columns.
	require.Len(t, res.Wide.Rows, 1)
	assert.Len(t, res.Wide.Rows[0].Values, 1)
}

func TestEmptyInputsKeepSchema(t *testing.T) {
	res := Transform(nil, core.BalanceSheet, testBS, testUnits, Options{}, nil)
	assert.Equal(t, testBS.Canonicals(), res.Wide.Fields)
	assert.Empty(t, res.Wide.Rows)
	assert.NotNil(t, res.Unknown)

	// Every fact filtered out mid-pipeline behaves the same.
	foreign := annualFact("adsh-1", "Assets", 1)
	foreign.UOM = "JPY"
	res = Transform([]core.Fact{foreign}, core.BalanceSheet, testBS, testUnits, Options{}, nil)
	assert.Equal(t, testBS.Canonicals(), res.Wide.Fields)
	assert.Empty(t, res.Wide.Rows)
}

func TestTransformIdempotent(t *testing.T) {
	facts := []core.Fact{
		annualFact("adsh-1", "Assets", 500),
		annualFact("adsh-1", "StockholdersEquity", 200),
		annualFact("adsh-2", "Assets", 300),
	}

	a := Transform(facts, core.BalanceSheet, testBS, testUnits, Options{}, nil)
	b := Transform(facts, core.BalanceSheet, testBS, testUnits, Options{}, nil)
	assert.Equal(t, a, b)
}

func TestCountUnknown(t *testing.T) {
	unknown := []core.Fact{
		annualFact("adsh-1", "TagB", 1),
		annualFact("adsh-1", "TagA", 1),
		annualFact("adsh-2", "TagB", 1),
		annualFact("adsh-3", "TagC", 1),
		annualFact("adsh-4", "TagC", 1),
	}

	counts := CountUnknown(unknown)
	require.Len(t, counts, 3)
	// Count descending, tag ascending on ties.
	assert.Equal(t, TagCount{Tag: "TagB", Count: 2}, counts[0])
	assert.Equal(t, TagCount{Tag: "TagC", Count: 2}, counts[1])
	assert.Equal(t, TagCount{Tag: "TagA", Count: 1}, counts[2])
}
