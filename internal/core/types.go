// Package core holds the shared domain types of the secpanel pipeline:
// filings, facts, wide statement tables, and panels. Every stage consumes
// and produces these types; none of them is mutated after creation.
package core

import "strings"

// StatementKind identifies one of the four statement passes.
type StatementKind string

const (
	BalanceSheet    StatementKind = "bs"
	IncomeStatement StatementKind = "is"
	CashFlow        StatementKind = "cf"
	SharesStatement StatementKind = "shares"
)

// String returns the short stage name used in artifact paths.
func (k StatementKind) String() string { return string(k) }

// FormSet is a set of SEC form types (e.g. "10-K", "10-Q/A").
type FormSet map[string]bool

// NewFormSet builds a FormSet from form names.
func NewFormSet(forms ...string) FormSet {
	s := make(FormSet, len(forms))
	for _, f := range forms {
		s[f] = true
	}
	return s
}

// Contains reports whether the form is in the set.
func (s FormSet) Contains(form string) bool { return s[form] }

// Union returns a new set with the members of both sets.
func (s FormSet) Union(other FormSet) FormSet {
	out := make(FormSet, len(s)+len(other))
	for f := range s {
		out[f] = true
	}
	for f := range other {
		out[f] = true
	}
	return out
}

var (
	// AnnualForms are the annual report forms (original and amended).
	AnnualForms = NewFormSet("10-K", "10-K/A")
	// QuarterlyForms are the quarterly report forms (original and amended).
	QuarterlyForms = NewFormSet("10-Q", "10-Q/A")
	// AllForms is the union of annual and quarterly forms.
	AllForms = AnnualForms.Union(QuarterlyForms)
)

// IsAmended reports whether a form is an amendment ("/A" suffix).
func IsAmended(form string) bool { return strings.HasSuffix(form, "/A") }

// FilingMeta identifies one filing and carries its submission metadata.
// Adsh (the accession number) is the identity anchor; one filing produces
// zero or more facts per statement.
type FilingMeta struct {
	Adsh   string // accession number, e.g. 0000320193-24-000123
	CIK    string // company identifier
	Name   string // registrant name
	Form   string // 10-K, 10-K/A, 10-Q, 10-Q/A
	FY     string // fiscal year, e.g. "2024"
	FP     string // fiscal period designator, e.g. "FY", "Q2"
	Period string // fiscal period end date, YYYYMMDD
	Filed  string // filing date, YYYYMMDD
	SIC    string // industry classification code
}

// Fact is one numeric data point extracted from a filing. Qtrs distinguishes
// instant facts (0, balance-sheet style) from duration facts spanning one to
// four fiscal quarters (income/cash-flow style).
type Fact struct {
	FilingMeta

	Tag       string  // raw XBRL tag
	DDate     string  // fact date (duration end date), YYYYMMDD
	Qtrs      int     // 0 = instant, 1..4 = duration in quarters
	UOM       string  // unit of measure as reported
	Value     float64 // numeric value, pre-normalization
	SourceZip string  // archive the fact came from
}

// WideRow is one filing's resolved statement: at most one normalized value
// per canonical field. Identity columns are carried on FilingMeta and are
// never subject to collision resolution.
type WideRow struct {
	FilingMeta

	SourceZip string
	Values    map[string]float64 // canonical field -> normalized value
}

// Value returns the row's value for a canonical field, if present.
func (r WideRow) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// WideTable is one wide statement table: one row per filing, one column per
// canonical field. Fields is always populated with the full canonical column
// schema, even when Rows is empty, so downstream joins never see a table
// with zero columns.
type WideTable struct {
	Fields []string
	Rows   []WideRow
}

// Empty reports whether the table has no rows.
func (t WideTable) Empty() bool { return len(t.Rows) == 0 }

// PanelRow is one (company, fiscal year) row of the joined panel: the union
// of the four wide statement rows plus metadata and derived quality flags.
// Flag pointers are nil when the inputs required to compute them are absent.
type PanelRow struct {
	FilingMeta

	SourceZip string
	Values    map[string]float64

	BSDiff     *float64 // |TotalAssets - (TotalLiabilities + equity components)|
	BSBalanced *bool    // BSDiff within tolerance
	CFDeltaAbs *float64 // |CFO + CFI + CFF|
	CFBalanced *bool    // CFDeltaAbs within tolerance
	Coverage   *float64 // fraction of key fields present, in [0, 1]
}

// Value returns the row's value for a canonical field, if present.
func (r PanelRow) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Panel is the joined table: one row per (company, fiscal year) after
// deduplication, canonical fields as value columns.
type Panel struct {
	Fields []string
	Rows   []PanelRow
}

// Empty reports whether the panel has no rows.
func (p Panel) Empty() bool { return len(p.Rows) == 0 }

// IDColumns is the stable identifier column order used by every serialized
// table: identifiers first, value columns after.
var IDColumns = []string{"adsh", "cik", "name", "form", "fy", "fp", "period", "filed", "sic", "source_zip"}
