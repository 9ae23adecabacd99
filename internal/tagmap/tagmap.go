// Package tagmap defines the canonical-field dictionaries that drive tag
// normalization: each canonical financial-statement line item owns an ordered
// list of acceptable source tags, ordered by preference. The same reverse
// lookup and preference ranking is shared by all statement transformers so
// collision resolution behaves identically everywhere.
package tagmap

import "strings"

// Field is one canonical line item and its source-tag synonyms. The synonym
// order encodes collision-resolution preference: the canonical name itself is
// an implicit synonym at rank 0, the first listed synonym at rank 1, and so
// on.
type Field struct {
	Canonical string   `koanf:"canonical"`
	Synonyms  []string `koanf:"synonyms"`
}

// TagMap is the ordered set of canonical fields for one statement type.
type TagMap struct {
	Fields []Field
}

// Canonicals returns the canonical field names in declaration order. This is
// the column schema of the wide statement table.
func (m TagMap) Canonicals() []string {
	out := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		out[i] = f.Canonical
	}
	return out
}

// UnknownRank sorts after every configured synonym. A (canonical, tag) pair
// that is not in the rank table falls back to this.
const UnknownRank = 10_000

// RankKey indexes the preference-rank table.
type RankKey struct {
	Canonical string
	Tag       string
}

// Reverse is the inverted tag map: a lookup from every source tag to its
// canonical field, plus the preference rank of each (canonical, tag) pair.
type Reverse struct {
	Canon map[string]string
	rank  map[RankKey]int
}

// Lookup returns the canonical field for a raw tag, if the tag is mapped.
func (r Reverse) Lookup(tag string) (string, bool) {
	c, ok := r.Canon[tag]
	return c, ok
}

// Rank returns the preference rank of a tag within a canonical field. Lower
// is more preferred; unmapped combinations rank UnknownRank.
func (r Reverse) Rank(canonical, tag string) int {
	if n, ok := r.rank[RankKey{canonical, tag}]; ok {
		return n
	}
	return UnknownRank
}

// Reverse inverts the forward map. The canonical name is prepended to its
// synonym list at rank 0. A tag claimed by an earlier field is not
// reassigned by a later one, so the mapping stays many-to-one and
// deterministic regardless of how the map was assembled.
func (m TagMap) Reverse() Reverse {
	rev := Reverse{
		Canon: make(map[string]string),
		rank:  make(map[RankKey]int),
	}
	for _, f := range m.Fields {
		order := append([]string{f.Canonical}, f.Synonyms...)
		for i, tag := range order {
			if _, taken := rev.Canon[tag]; !taken {
				rev.Canon[tag] = f.Canonical
			}
			key := RankKey{f.Canonical, tag}
			if _, seen := rev.rank[key]; !seen {
				rev.rank[key] = i
			}
		}
	}
	return rev
}

// UnitTable maps a unit of measure (case-insensitive) to the multiplier that
// normalizes its values to the base unit. Units absent from the table are
// excluded from monetary facts, never defaulted to scale 1.
type UnitTable map[string]float64

// Multiplier returns the scale factor for a unit, if the unit is recognized.
func (u UnitTable) Multiplier(uom string) (float64, bool) {
	m, ok := u[strings.ToLower(uom)]
	return m, ok
}

// NewUnitTable builds a UnitTable, lower-casing unit names.
func NewUnitTable(units map[string]float64) UnitTable {
	t := make(UnitTable, len(units))
	for k, v := range units {
		t[strings.ToLower(k)] = v
	}
	return t
}

// Set bundles the per-statement tag maps and unit tables used by one
// pipeline run. Threading it explicitly through every transformer call keeps
// the transforms deterministic and testable with synthetic maps.
type Set struct {
	BalanceSheet    TagMap
	IncomeStatement TagMap
	CashFlow        TagMap
	Shares          TagMap

	MonetaryUnits UnitTable
	ShareUnits    UnitTable
}
