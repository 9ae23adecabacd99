// Package fsds reads SEC Financial Statement Data Set quarterly archives:
// one ZIP per fiscal quarter containing tab-delimited tables. The three
// tables the pipeline needs are sub.txt (one row per filing), pre.txt (one
// row per (filing, tag) with a statement designator) and num.txt (one row
// per numeric fact). The source null marker is a literal \N.
package fsds

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// The archive members the pipeline reads. tag.txt exists in every archive
// but carries only label metadata the pipeline does not use.
const (
	MemberSub = "sub"
	MemberPre = "pre"
	MemberNum = "num"
)

// nullMarker is the SEC null sentinel in the raw text files.
const nullMarker = `\N`

// Archive is an open FSDS quarterly ZIP.
type Archive struct {
	path    string
	rc      *zip.ReadCloser
	members map[string]*zip.File
}

// Open opens an FSDS archive and locates its required members. A missing
// member is a structural error: the archive is unusable and processing of it
// must stop.
func Open(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}

	a := &Archive{
		path:    path,
		rc:      rc,
		members: make(map[string]*zip.File, 3),
	}

	for _, want := range []string{MemberSub, MemberPre, MemberNum} {
		f := findMember(rc.File, want)
		if f == nil {
			_ = rc.Close()
			return nil, fmt.Errorf("%s.txt not found in %s", want, filepath.Base(path))
		}
		a.members[want] = f
	}

	return a, nil
}

// findMember locates "<name>.txt" anywhere in the archive, case-insensitively.
// Archives typically nest members under a quarter directory ("2025q2/sub.txt").
func findMember(files []*zip.File, name string) *zip.File {
	want := name + ".txt"
	for _, f := range files {
		lower := strings.ToLower(f.Name)
		if lower == want || strings.HasSuffix(lower, "/"+want) {
			return f
		}
	}
	return nil
}

// Close releases the underlying ZIP reader.
func (a *Archive) Close() error {
	if a.rc == nil {
		return nil
	}
	return a.rc.Close()
}

// Path returns the archive's file path.
func (a *Archive) Path() string { return a.path }

// Name returns the archive file name, stamped on every fact as provenance.
func (a *Archive) Name() string { return filepath.Base(a.path) }

// Quarter derives the year-quarter identifier ("2025q2") from the archive
// file name.
func (a *Archive) Quarter() string {
	return strings.TrimSuffix(a.Name(), filepath.Ext(a.Name()))
}

// Table is one tab-delimited member read into memory. Columns holds the
// intersection of the requested and present columns, in file order; rows are
// accessed by column name.
type Table struct {
	Columns []string
	rows    [][]string
	index   map[string]int
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Get returns the value at (row, column). Absent columns and null-marked
// cells read as the empty string; callers treat empty as missing.
func (t *Table) Get(row int, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][i]
}

// Has reports whether the column survived the intersection with the file.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// ReadTable reads one member into memory, keeping only the wanted columns
// that actually exist in the file. Requested columns missing from a vintage
// are dropped, never fabricated.
func (a *Archive) ReadTable(member string, wanted []string) (*Table, error) {
	f, ok := a.members[member]
	if !ok {
		return nil, fmt.Errorf("unknown archive member %q", member)
	}

	rd, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", f.Name, a.Name(), err)
	}
	defer func() { _ = rd.Close() }()

	cr := csv.NewReader(rd)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", f.Name, err)
	}

	// Map wanted columns to their positions in the file.
	wantSet := make(map[string]bool, len(wanted))
	for _, c := range wanted {
		wantSet[c] = true
	}
	keep := make([]int, 0, len(wanted))
	columns := make([]string, 0, len(wanted))
	for i, col := range header {
		if wantSet[col] {
			keep = append(keep, i)
			columns = append(columns, col)
		}
	}

	t := &Table{
		Columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[c] = i
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		row := make([]string, len(keep))
		for j, i := range keep {
			if i >= len(rec) {
				continue
			}
			v := rec[i]
			if v == nullMarker {
				v = ""
			}
			row[j] = v
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}
