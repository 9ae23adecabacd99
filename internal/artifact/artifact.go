// Package artifact persists the pipeline's intermediate tables as CSV files
// under the silver/gold directory layout:
//
//	silver/<stage>/year_quarter=<yq>/<stage>.csv
//	silver/<stage>/year_quarter=<yq>/unknown_tags.csv
//	gold/<yq>_financials.csv
//	gold/financials_panel.csv
//
// Paths are the cache key: a stage whose artifact already exists can be
// reused instead of recomputed. Nothing writes these paths concurrently, so
// plain files are a sufficient idempotency boundary.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/finstack-labs/secpanel/internal/core"
)

// MetaStage is the artifact stage name for the filing-metadata table.
const MetaStage = "meta"

// Store resolves artifact paths under the silver and gold roots.
type Store struct {
	SilverDir string
	GoldDir   string
}

// NewStore returns a path store rooted at the given directories.
func NewStore(silverDir, goldDir string) *Store {
	return &Store{SilverDir: silverDir, GoldDir: goldDir}
}

// WidePath is the wide statement table for one (stage, archive).
func (s *Store) WidePath(kind core.StatementKind, yq string) string {
	return s.stagePath(kind.String(), yq, kind.String()+".csv")
}

// MetaPath is the filing-metadata table for one archive.
func (s *Store) MetaPath(yq string) string {
	return s.stagePath(MetaStage, yq, MetaStage+".csv")
}

// UnknownPath is the unknown-tag frequency table for one (stage, archive).
func (s *Store) UnknownPath(kind core.StatementKind, yq string) string {
	return s.stagePath(kind.String(), yq, "unknown_tags.csv")
}

func (s *Store) stagePath(stage, yq, name string) string {
	return filepath.Join(s.SilverDir, stage, "year_quarter="+yq, name)
}

// GoldPath is the per-archive joined panel.
func (s *Store) GoldPath(yq string) string {
	return filepath.Join(s.GoldDir, yq+"_financials.csv")
}

// PanelPath is the master panel.
func (s *Store) PanelPath() string {
	return filepath.Join(s.GoldDir, "financials_panel.csv")
}

// GoldPaths lists existing per-archive gold artifacts in name order, which
// is chronological order for the yq naming scheme within a century.
func (s *Store) GoldPaths() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.GoldDir, "*_financials.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list gold artifacts: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Exists reports whether an artifact is already materialized at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
