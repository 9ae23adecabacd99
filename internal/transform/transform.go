// Package transform implements the statement transformer: the multi-stage
// pipeline that turns a long fact table into one wide, canonical,
// unit-normalized row per filing.
//
// The stages run in a fixed order (form/fiscal-period filter, temporal
// alignment, unit filter and normalization, tag-to-canonical mapping,
// collision resolution, pivot) and an empty intermediate result
// short-circuits to a well-formed empty result with the full column schema.
// No stage errors for data-quality reasons.
package transform

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/finstack-labs/secpanel/internal/core"
	"github.com/finstack-labs/secpanel/internal/tagmap"
)

// Options configures the filter stages shared by every statement kind.
// The annual-only variant of the pipeline is this with Forms=AnnualForms and
// FiscalPeriods=["FY"]; it is not a separate implementation.
type Options struct {
	// Forms restricts filings to these form types. Nil means all supported
	// forms (annual + quarterly).
	Forms core.FormSet

	// FiscalPeriods restricts filings to these fiscal period designators
	// (case-insensitive, e.g. "FY"). Nil means no restriction.
	FiscalPeriods []string
}

// Result carries the wide table plus the facts whose tags had no entry in
// the tag map. Unknown facts are a diagnostic side channel for tag-map
// maintenance; they are excluded from canonical columns but never dropped
// silently.
type Result struct {
	Wide    core.WideTable
	Unknown []core.Fact
}

// Transform runs the full statement transformation for one statement kind.
// The returned wide table always carries the tag map's full canonical column
// schema, even when zero rows survive the filters.
func Transform(facts []core.Fact, kind core.StatementKind, tm tagmap.TagMap, units tagmap.UnitTable, opts Options, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	res := Result{
		Wide:    core.WideTable{Fields: tm.Canonicals()},
		Unknown: []core.Fact{},
	}

	facts = filterForms(facts, opts)
	if len(facts) == 0 {
		return res
	}

	facts = filterTemporal(facts, kind)
	if len(facts) == 0 {
		return res
	}

	facts = normalizeUnits(facts, units)
	if len(facts) == 0 {
		return res
	}

	rev := tm.Reverse()
	mapped, unknown := applyTagMap(facts, rev)
	res.Unknown = unknown
	if len(mapped) == 0 {
		logger.Debug("no facts mapped to canonical fields",
			"statement", kind.String(), "unknown", len(unknown))
		return res
	}

	resolved := resolveCollisions(mapped)
	res.Wide.Rows = pivot(resolved)

	logger.Debug("transformed statement",
		"statement", kind.String(),
		"filings", len(res.Wide.Rows),
		"mapped_facts", len(mapped),
		"unknown_facts", len(unknown))
	return res
}

// filterForms applies the form allow-list and optional fiscal-period filter.
func filterForms(facts []core.Fact, opts Options) []core.Fact {
	forms := opts.Forms
	if forms == nil {
		forms = core.AllForms
	}
	fps := make(map[string]bool, len(opts.FiscalPeriods))
	for _, fp := range opts.FiscalPeriods {
		fps[strings.ToUpper(fp)] = true
	}

	out := facts[:0:0]
	for _, f := range facts {
		if !forms.Contains(f.Form) {
			continue
		}
		if len(fps) > 0 && !fps[strings.ToUpper(f.FP)] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// filterTemporal keeps only facts whose date and duration are valid for the
// statement kind:
//
//   - Balance sheet: instant facts only, qtrs 0 and dated exactly at the
//     filing's period end. A balance sheet reports a point-in-time position.
//   - Income statement / cash flow: duration facts ending at period end,
//     four quarters for annual forms, one to three for quarterly forms.
//   - Shares: instant (point-in-time counts) or duration (weighted averages)
//     at period end; which canonical field a fact maps to disambiguates.
func filterTemporal(facts []core.Fact, kind core.StatementKind) []core.Fact {
	out := facts[:0:0]
	for _, f := range facts {
		if f.DDate == "" || f.DDate != f.Period {
			continue
		}
		switch kind {
		case core.BalanceSheet:
			if f.Qtrs == 0 {
				out = append(out, f)
			}
		case core.IncomeStatement, core.CashFlow:
			if core.AnnualForms.Contains(f.Form) && f.Qtrs == 4 {
				out = append(out, f)
			} else if core.QuarterlyForms.Contains(f.Form) && f.Qtrs >= 1 && f.Qtrs <= 3 {
				out = append(out, f)
			}
		case core.SharesStatement:
			if f.Qtrs >= 0 && f.Qtrs <= 4 {
				out = append(out, f)
			}
		}
	}
	return out
}

// normalizeUnits keeps facts in recognized units and scales their values to
// the base unit. Facts in unrecognized units are dropped, not zeroed.
func normalizeUnits(facts []core.Fact, units tagmap.UnitTable) []core.Fact {
	out := facts[:0:0]
	for _, f := range facts {
		mult, ok := units.Multiplier(f.UOM)
		if !ok {
			continue
		}
		f.Value *= mult
		out = append(out, f)
	}
	return out
}

// mappedFact is a fact annotated with its canonical field and synonym rank.
type mappedFact struct {
	core.Fact
	canonical string
	rank      int
}

// applyTagMap partitions facts into mapped and unknown.
func applyTagMap(facts []core.Fact, rev tagmap.Reverse) ([]mappedFact, []core.Fact) {
	mapped := make([]mappedFact, 0, len(facts))
	unknown := []core.Fact{}
	for _, f := range facts {
		canon, ok := rev.Lookup(f.Tag)
		if !ok {
			unknown = append(unknown, f)
			continue
		}
		mapped = append(mapped, mappedFact{
			Fact:      f,
			canonical: canon,
			rank:      rev.Rank(canon, f.Tag),
		})
	}
	return mapped, unknown
}

// resolveCollisions selects exactly one fact per (filing, canonical field).
// The order is total: synonym preference rank ascending, then absolute value
// descending, applied with a stable sort so residual ties break consistently
// regardless of input row order.
func resolveCollisions(mapped []mappedFact) []mappedFact {
	sort.SliceStable(mapped, func(i, j int) bool {
		a, b := mapped[i], mapped[j]
		if a.Adsh != b.Adsh {
			return a.Adsh < b.Adsh
		}
		if a.canonical != b.canonical {
			return a.canonical < b.canonical
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return math.Abs(a.Value) > math.Abs(b.Value)
	})

	out := mapped[:0:0]
	for i, m := range mapped {
		if i > 0 && m.Adsh == mapped[i-1].Adsh && m.canonical == mapped[i-1].canonical {
			continue // loser of a collision
		}
		out = append(out, m)
	}
	return out
}

// pivot groups resolved facts by filing into wide rows. Input is sorted by
// (adsh, canonical) from collision resolution, so rows come out in adsh
// order and the whole transform is deterministic.
func pivot(resolved []mappedFact) []core.WideRow {
	var rows []core.WideRow
	byAdsh := make(map[string]int)
	for _, m := range resolved {
		i, ok := byAdsh[m.Adsh]
		if !ok {
			rows = append(rows, core.WideRow{
				FilingMeta: m.FilingMeta,
				SourceZip:  m.SourceZip,
				Values:     make(map[string]float64),
			})
			i = len(rows) - 1
			byAdsh[m.Adsh] = i
		}
		rows[i].Values[m.canonical] = m.Value
	}
	return rows
}
