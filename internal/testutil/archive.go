package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ArchiveSpec describes a synthetic quarterly archive. Each member is a
// slice of rows; each row a slice of cells, joined with tabs. The first row
// is the header.
type ArchiveSpec struct {
	Sub [][]string
	Pre [][]string
	Num [][]string
}

// Standard member headers matching the upstream dataset layout.
var (
	SubHeader = []string{"adsh", "cik", "name", "form", "fy", "fp", "period", "filed", "sic"}
	PreHeader = []string{"adsh", "tag", "stmt"}
	NumHeader = []string{"adsh", "tag", "ddate", "qtrs", "uom", "value"}
)

// WriteArchive writes a synthetic archive ZIP named <name>.zip under dir and
// returns its path. Members are emitted tab-delimited, the on-disk format of
// the quarterly datasets.
func WriteArchive(t testing.TB, dir, name string, spec ArchiveSpec) string {
	t.Helper()

	path := filepath.Join(dir, name+".zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive fixture: %v", err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	members := map[string][][]string{
		"sub.txt": spec.Sub,
		"pre.txt": spec.Pre,
		"num.txt": spec.Num,
	}
	for _, member := range []string{"sub.txt", "pre.txt", "num.txt"} {
		w, err := zw.Create(member)
		if err != nil {
			t.Fatalf("failed to create member %s: %v", member, err)
		}
		for _, row := range members[member] {
			if _, err := w.Write([]byte(strings.Join(row, "\t") + "\n")); err != nil {
				t.Fatalf("failed to write member %s: %v", member, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish archive fixture: %v", err)
	}
	return path
}
