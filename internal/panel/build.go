// Package panel joins the wide statement tables of an archive into one row
// per filing, deduplicates to one row per (company, fiscal year), computes
// quality flags, and aggregates per-archive panels into the master panel.
package panel

import (
	"log/slog"
	"sort"

	"github.com/finstack-labs/secpanel/internal/core"
)

// builder accumulates panel rows keyed by accession number while preserving
// insertion order.
type builder struct {
	order  []string
	byAdsh map[string]*core.PanelRow
}

func newBuilder() *builder {
	return &builder{byAdsh: make(map[string]*core.PanelRow)}
}

// ensure returns the row for a filing, creating it from the given identity
// if absent, and coalescing empty identity fields if present.
func (b *builder) ensure(fm core.FilingMeta, sourceZip string) *core.PanelRow {
	if row, ok := b.byAdsh[fm.Adsh]; ok {
		coalesceMeta(&row.FilingMeta, fm)
		return row
	}
	row := &core.PanelRow{
		FilingMeta: fm,
		SourceZip:  sourceZip,
		Values:     make(map[string]float64),
	}
	b.byAdsh[fm.Adsh] = row
	b.order = append(b.order, fm.Adsh)
	return row
}

func (b *builder) get(adsh string) (*core.PanelRow, bool) {
	row, ok := b.byAdsh[adsh]
	return row, ok
}

func (b *builder) rows() []core.PanelRow {
	out := make([]core.PanelRow, 0, len(b.order))
	for _, adsh := range b.order {
		out = append(out, *b.byAdsh[adsh])
	}
	return out
}

// coalesceMeta fills empty identity fields of dst from src. Identity comes
// from the metadata table when available; statement tables only supply what
// is missing.
func coalesceMeta(dst *core.FilingMeta, src core.FilingMeta) {
	fill := func(d *string, s string) {
		if *d == "" {
			*d = s
		}
	}
	fill(&dst.CIK, src.CIK)
	fill(&dst.Name, src.Name)
	fill(&dst.Form, src.Form)
	fill(&dst.FY, src.FY)
	fill(&dst.FP, src.FP)
	fill(&dst.Period, src.Period)
	fill(&dst.Filed, src.Filed)
	fill(&dst.SIC, src.SIC)
}

// BuildArchive joins one archive's statement tables and metadata into a
// per-archive panel:
//
//   - the metadata table is the identifier grid; when it is empty the grid
//     is reconstructed by coalescing identity columns across whichever
//     statement tables are non-empty,
//   - balance sheet, income statement and cash flow are outer-joined on the
//     filing identifier, contributing only their canonical value columns,
//   - shares is left-joined (a filing legitimately may have no share facts),
//   - rows collapse to one per (cik, fy), latest filed wins,
//   - quality flags are computed last.
func BuildArchive(meta []core.FilingMeta, bs, is, cf, sh core.WideTable, yq string, logger *slog.Logger) core.Panel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := newBuilder()
	for _, fm := range meta {
		b.ensure(fm, yq)
	}

	// Fallback identifier grid when the metadata table is empty.
	if len(b.order) == 0 {
		for _, t := range []core.WideTable{bs, is, cf, sh} {
			for _, row := range t.Rows {
				b.ensure(row.FilingMeta, yq)
			}
		}
	}

	// Outer-join the three monetary statements: value columns only, rows
	// added for filings the grid has not seen.
	for _, t := range []core.WideTable{bs, is, cf} {
		for _, row := range t.Rows {
			pr := b.ensure(row.FilingMeta, yq)
			for field, v := range row.Values {
				pr.Values[field] = v
			}
		}
	}

	// Left-join shares: a share row without a grid row must not create one,
	// and a grid row without shares keeps its nulls.
	for _, row := range sh.Rows {
		pr, ok := b.get(row.Adsh)
		if !ok {
			continue
		}
		for field, v := range row.Values {
			pr.Values[field] = v
		}
	}

	p := core.Panel{
		Fields: unionFields(bs.Fields, is.Fields, cf.Fields, sh.Fields),
		Rows:   b.rows(),
	}
	for i := range p.Rows {
		p.Rows[i].SourceZip = yq
	}

	p.Rows = dedupLatest(p.Rows)
	applyFlags(&p)

	logger.Debug("built archive panel", "archive", yq, "rows", len(p.Rows), "fields", len(p.Fields))
	return p
}

// unionFields concatenates field lists, dropping duplicates while keeping
// first-seen order. Canonical names are unique per statement by
// construction; this guards against overlap across tag maps.
func unionFields(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// dedupLatest collapses rows to one per (cik, fy). Candidates are ordered by
// filing date; a same-day amendment outranks the original filing; the stable
// sort keeps any remaining ties in input order so a later archive's row
// survives during aggregation. Rows missing any of the three key fields are
// passed through untouched; the step degrades to a no-op rather than
// guessing identity.
func dedupLatest(rows []core.PanelRow) []core.PanelRow {
	type key struct{ cik, fy string }

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CIK != b.CIK {
			return a.CIK < b.CIK
		}
		if a.FY != b.FY {
			return a.FY < b.FY
		}
		if a.Filed != b.Filed {
			return a.Filed < b.Filed
		}
		// Amended form sorts after the original, so "keep last" prefers it.
		return !core.IsAmended(a.Form) && core.IsAmended(b.Form)
	})

	latest := make(map[key]int)
	var out []core.PanelRow
	for _, row := range rows {
		if row.CIK == "" || row.FY == "" || row.Filed == "" {
			out = append(out, row)
			continue
		}
		k := key{row.CIK, row.FY}
		if i, ok := latest[k]; ok {
			out[i] = row // later in sort order supersedes
			continue
		}
		latest[k] = len(out)
		out = append(out, row)
	}
	return out
}
