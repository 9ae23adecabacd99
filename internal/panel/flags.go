package panel

import (
	"math"

	"github.com/finstack-labs/secpanel/internal/core"
)

// identityTolerance is the absolute currency-unit tolerance for the
// cross-statement identity checks. SEC values are whole dollars after unit
// normalization; rounding in filings makes exact identities rare.
const identityTolerance = 1_000.0

// coverageChecklist is the fixed key-field set behind the coverage score.
var coverageChecklist = []string{
	"TotalAssets", "TotalLiabilities", "ShareholdersEquity",
	"Revenue", "OperatingIncome", "NetIncome",
	"CFO", "CFI", "CFF",
	"CommonSharesOutstanding", "WASOBasic", "WASODiluted",
}

// applyFlags recomputes the quality flags for every row. Flags are derived
// from the row they describe and are never persisted independently of it;
// any rebuild of the panel recomputes them.
func applyFlags(p *core.Panel) {
	for i := range p.Rows {
		row := &p.Rows[i]
		flagBalanceSheet(row)
		flagCashFlow(row)
		flagCoverage(row)
	}
}

// flagBalanceSheet checks A = L + E within tolerance. TemporaryEquity joins
// the right-hand side when present. If assets, liabilities or equity is
// missing the flag stays unknown, not false.
func flagBalanceSheet(row *core.PanelRow) {
	ta, okTA := row.Value("TotalAssets")
	tl, okTL := row.Value("TotalLiabilities")
	se, okSE := row.Value("ShareholdersEquity")
	if !okTA || !okTL || !okSE {
		row.BSDiff = nil
		row.BSBalanced = nil
		return
	}
	rhs := tl + se
	if te, ok := row.Value("TemporaryEquity"); ok {
		rhs += te
	}
	diff := math.Abs(ta - rhs)
	balanced := diff <= identityTolerance
	row.BSDiff = &diff
	row.BSBalanced = &balanced
}

// flagCashFlow checks CFO + CFI + CFF ≈ 0 within tolerance. All three
// components must be present.
func flagCashFlow(row *core.PanelRow) {
	cfo, okO := row.Value("CFO")
	cfi, okI := row.Value("CFI")
	cff, okF := row.Value("CFF")
	if !okO || !okI || !okF {
		row.CFDeltaAbs = nil
		row.CFBalanced = nil
		return
	}
	delta := math.Abs(cfo + cfi + cff)
	balanced := delta <= identityTolerance
	row.CFDeltaAbs = &delta
	row.CFBalanced = &balanced
}

// flagCoverage scores completeness: the fraction of the fixed checklist
// populated on this row.
func flagCoverage(row *core.PanelRow) {
	n := 0
	for _, field := range coverageChecklist {
		if _, ok := row.Value(field); ok {
			n++
		}
	}
	score := float64(n) / float64(len(coverageChecklist))
	row.Coverage = &score
}
