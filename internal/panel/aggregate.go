package panel

import (
	"log/slog"

	"github.com/finstack-labs/secpanel/internal/core"
)

// Aggregate concatenates per-archive panels into the master panel. The same
// fiscal year can appear in more than one quarterly archive (amendments), so
// deduplication is re-applied across archives: latest filing date wins for
// a (company, fiscal year) pair globally, and with equal dates the row from
// the later archive survives. Quality flags are recomputed because the field
// set can differ across archives.
//
// Panels must be passed in archive order for the equal-date rule to hold;
// the result is otherwise order-independent.
func Aggregate(panels []core.Panel, logger *slog.Logger) core.Panel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fieldLists := make([][]string, len(panels))
	var total int
	for i, p := range panels {
		fieldLists[i] = p.Fields
		total += len(p.Rows)
	}

	master := core.Panel{
		Fields: unionFields(fieldLists...),
		Rows:   make([]core.PanelRow, 0, total),
	}
	for _, p := range panels {
		master.Rows = append(master.Rows, p.Rows...)
	}

	master.Rows = dedupLatest(master.Rows)
	applyFlags(&master)

	logger.Debug("aggregated master panel",
		"archives", len(panels), "rows", len(master.Rows), "fields", len(master.Fields))
	return master
}
