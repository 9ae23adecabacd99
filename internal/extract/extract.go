// Package extract produces long (tidy) fact tables from an FSDS archive: one
// row per numeric fact presented on a given statement, with filing metadata
// attached. It is the bronze layer of the pipeline; all filtering beyond the
// statement membership and form allow-list happens in the transformer.
package extract

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/finstack-labs/secpanel/internal/core"
	"github.com/finstack-labs/secpanel/internal/fsds"
)

var (
	subColumns = []string{"adsh", "cik", "name", "form", "fy", "fp", "period", "filed", "sic"}
	preColumns = []string{"adsh", "tag", "stmt"}
	numColumns = []string{"adsh", "tag", "ddate", "qtrs", "uom", "value"}
)

// formsFor returns the extractor's form allow-list per statement. Balance
// sheets and income statements are extracted from annual reports; cash flow
// and shares also admit quarterly reports.
func formsFor(kind core.StatementKind) core.FormSet {
	switch kind {
	case core.BalanceSheet, core.IncomeStatement:
		return core.AnnualForms
	default:
		return core.AllForms
	}
}

// matchesStatement reports whether a presentation-table statement designator
// belongs to the given statement. Matching is case-insensitive; cash flow
// also accepts designators containing "CF" to tolerate taxonomy variants
// ("SCF" and friends).
func matchesStatement(kind core.StatementKind, stmt string) bool {
	u := strings.ToUpper(strings.TrimSpace(stmt))
	switch kind {
	case core.BalanceSheet:
		return u == "BS"
	case core.IncomeStatement:
		return u == "IS"
	case core.CashFlow:
		return strings.Contains(u, "CF")
	default:
		return false
	}
}

type pairKey struct{ adsh, tag string }

// Facts extracts the long fact table for one statement from an archive.
// Facts are restricted to (filing, tag) pairs presented on that statement
// and to the statement's form allow-list; values are coerced to numeric with
// unparseable rows dropped. If no presentation rows match the statement the
// result is empty, never an error. Duplicate (filing, tag, date, unit) rows
// are kept; collision resolution happens in the transformer.
func Facts(a *fsds.Archive, kind core.StatementKind, logger *slog.Logger) ([]core.Fact, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pre, err := a.ReadTable(fsds.MemberPre, preColumns)
	if err != nil {
		return nil, err
	}

	pairs := make(map[pairKey]bool)
	for i := 0; i < pre.Len(); i++ {
		if matchesStatement(kind, pre.Get(i, "stmt")) {
			pairs[pairKey{pre.Get(i, "adsh"), pre.Get(i, "tag")}] = true
		}
	}
	if len(pairs) == 0 {
		logger.Debug("no presentation rows for statement", "statement", kind.String(), "archive", a.Name())
		return []core.Fact{}, nil
	}

	meta, err := readMeta(a, formsFor(kind), nil)
	if err != nil {
		return nil, err
	}

	num, err := a.ReadTable(fsds.MemberNum, numColumns)
	if err != nil {
		return nil, err
	}

	facts := collectFacts(num, a.Name(), meta, func(adsh, tag string) bool {
		return pairs[pairKey{adsh, tag}]
	})

	logger.Debug("extracted statement facts",
		"statement", kind.String(), "archive", a.Name(), "facts", len(facts))
	return facts, nil
}

// AllFacts extracts every numeric fact for filings in the form allow-list,
// without a presentation join. The shares transformer feeds from this: share
// counts are frequently presented outside the face statements.
func AllFacts(a *fsds.Archive, logger *slog.Logger) ([]core.Fact, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	meta, err := readMeta(a, core.AllForms, nil)
	if err != nil {
		return nil, err
	}

	num, err := a.ReadTable(fsds.MemberNum, numColumns)
	if err != nil {
		return nil, err
	}

	facts := collectFacts(num, a.Name(), meta, func(string, string) bool { return true })

	logger.Debug("extracted all facts", "archive", a.Name(), "facts", len(facts))
	return facts, nil
}

// collectFacts joins numeric rows to filing metadata, coercing values and
// dropping rows that fail to parse or whose filing is outside the allow-list.
func collectFacts(num *fsds.Table, sourceZip string, meta map[string]core.FilingMeta, keep func(adsh, tag string) bool) []core.Fact {
	facts := make([]core.Fact, 0, num.Len()/4)
	for i := 0; i < num.Len(); i++ {
		adsh := num.Get(i, "adsh")
		tag := num.Get(i, "tag")
		if !keep(adsh, tag) {
			continue
		}
		fm, ok := meta[adsh]
		if !ok {
			continue // filing not in the form allow-list
		}
		raw := num.Get(i, "value")
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue // unparseable value: dropped, never propagated
		}
		facts = append(facts, core.Fact{
			FilingMeta: fm,
			Tag:        tag,
			DDate:      num.Get(i, "ddate"),
			Qtrs:       parseQtrs(num.Get(i, "qtrs")),
			UOM:        num.Get(i, "uom"),
			Value:      v,
			SourceZip:  sourceZip,
		})
	}
	return facts
}

// parseQtrs coerces the raw duration field. Empty means instant (0); a value
// that does not parse gets -1, which no temporal filter accepts.
func parseQtrs(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return -1
	}
	return n
}

// readMeta reads the submission table into a filing index, restricted to the
// given forms and (optionally) fiscal period designators.
func readMeta(a *fsds.Archive, forms core.FormSet, fps []string) (map[string]core.FilingMeta, error) {
	sub, err := a.ReadTable(fsds.MemberSub, subColumns)
	if err != nil {
		return nil, err
	}

	fpSet := make(map[string]bool, len(fps))
	for _, fp := range fps {
		fpSet[strings.ToUpper(fp)] = true
	}

	meta := make(map[string]core.FilingMeta, sub.Len())
	for i := 0; i < sub.Len(); i++ {
		form := sub.Get(i, "form")
		if !forms.Contains(form) {
			continue
		}
		fp := sub.Get(i, "fp")
		if len(fpSet) > 0 && !fpSet[strings.ToUpper(fp)] {
			continue
		}
		fm := core.FilingMeta{
			Adsh:   sub.Get(i, "adsh"),
			CIK:    sub.Get(i, "cik"),
			Name:   sub.Get(i, "name"),
			Form:   form,
			FY:     sub.Get(i, "fy"),
			FP:     fp,
			Period: sub.Get(i, "period"),
			Filed:  sub.Get(i, "filed"),
			SIC:    sub.Get(i, "sic"),
		}
		if fm.Adsh == "" {
			continue
		}
		meta[fm.Adsh] = fm
	}
	return meta, nil
}

// Metadata extracts one normalized metadata row per filing, restricted to
// the given forms and fiscal periods. Rows are ordered by (cik, fy, fp,
// filed) so repeated runs serialize identically.
func Metadata(a *fsds.Archive, forms core.FormSet, fps []string, logger *slog.Logger) ([]core.FilingMeta, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if forms == nil {
		forms = core.AllForms
	}

	index, err := readMeta(a, forms, fps)
	if err != nil {
		return nil, err
	}

	rows := make([]core.FilingMeta, 0, len(index))
	for _, fm := range index {
		rows = append(rows, fm)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CIK != b.CIK {
			return a.CIK < b.CIK
		}
		if a.FY != b.FY {
			return a.FY < b.FY
		}
		if a.FP != b.FP {
			return a.FP < b.FP
		}
		if a.Filed != b.Filed {
			return a.Filed < b.Filed
		}
		return a.Adsh < b.Adsh
	})

	logger.Debug("extracted metadata", "archive", a.Name(), "filings", len(rows))
	return rows, nil
}
