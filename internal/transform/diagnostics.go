package transform

import (
	"sort"

	"github.com/finstack-labs/secpanel/internal/core"
)

// TagCount is one unknown tag and how many facts carried it.
type TagCount struct {
	Tag   string
	Count int
}

// CountUnknown aggregates the unknown side-table into per-tag frequencies,
// most frequent first (ties by tag name). This is the map-coverage
// diagnostic used to maintain the tag maps.
func CountUnknown(unknown []core.Fact) []TagCount {
	counts := make(map[string]int)
	for _, f := range unknown {
		counts[f.Tag]++
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
