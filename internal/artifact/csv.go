package artifact

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/finstack-labs/secpanel/internal/core"
	"github.com/finstack-labs/secpanel/internal/transform"
)

// Flag column names, matching the panel schema consumed by the dashboard.
var flagColumns = []string{"bs_diff", "bs_balanced_flag", "cf_delta_abs", "cf_balanced_flag", "coverage_score"}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact %s: %w", path, err)
	}
	return f, nil
}

func metaCells(fm core.FilingMeta, sourceZip string) []string {
	return []string{fm.Adsh, fm.CIK, fm.Name, fm.Form, fm.FY, fm.FP, fm.Period, fm.Filed, fm.SIC, sourceZip}
}

func metaFromCells(rec []string) (core.FilingMeta, string) {
	get := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	return core.FilingMeta{
		Adsh:   get(0),
		CIK:    get(1),
		Name:   get(2),
		Form:   get(3),
		FY:     get(4),
		FP:     get(5),
		Period: get(6),
		Filed:  get(7),
		SIC:    get(8),
	}, get(9)
}

// WriteWide serializes a wide statement table: identifier columns first,
// canonical fields after, missing values as empty cells. The full field
// schema is written even for an empty table.
func WriteWide(path string, t core.WideTable) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := append(append([]string{}, core.IDColumns...), t.Fields...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range t.Rows {
		rec := metaCells(row.FilingMeta, row.SourceZip)
		for _, field := range t.Fields {
			if v, ok := row.Values[field]; ok {
				rec = append(rec, formatValue(v))
			} else {
				rec = append(rec, "")
			}
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadWide reads a wide statement table back. The field schema is whatever
// columns follow the identifier block, so tables written with older tag maps
// round-trip unchanged.
func ReadWide(path string) (core.WideTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.WideTable{}, fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return core.WideTable{Fields: []string{}}, nil
	}
	if err != nil {
		return core.WideTable{}, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	nid := len(core.IDColumns)
	fields := []string{}
	if len(header) > nid {
		fields = append(fields, header[nid:]...)
	}

	t := core.WideTable{Fields: fields}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return core.WideTable{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		fm, sourceZip := metaFromCells(rec)
		row := core.WideRow{FilingMeta: fm, SourceZip: sourceZip, Values: make(map[string]float64)}
		for j, field := range fields {
			i := nid + j
			if i >= len(rec) || rec[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				continue
			}
			row.Values[field] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteMeta serializes the filing-metadata table (identifier columns only).
func WriteMeta(path string, rows []core.FilingMeta, sourceZip string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(core.IDColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, fm := range rows {
		if err := w.Write(metaCells(fm, sourceZip)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadMeta reads the filing-metadata table back.
func ReadMeta(path string) ([]core.FilingMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	if _, err := r.Read(); err == io.EOF {
		return []core.FilingMeta{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	var rows []core.FilingMeta
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		fm, _ := metaFromCells(rec)
		rows = append(rows, fm)
	}
	return rows, nil
}

// WritePanel serializes a panel: identifiers first, canonical value columns,
// then the quality-flag columns.
func WritePanel(path string, p core.Panel) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := append(append([]string{}, core.IDColumns...), p.Fields...)
	header = append(header, flagColumns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range p.Rows {
		rec := metaCells(row.FilingMeta, row.SourceZip)
		for _, field := range p.Fields {
			if v, ok := row.Values[field]; ok {
				rec = append(rec, formatValue(v))
			} else {
				rec = append(rec, "")
			}
		}
		rec = append(rec,
			formatOptFloat(row.BSDiff),
			formatOptBool(row.BSBalanced),
			formatOptFloat(row.CFDeltaAbs),
			formatOptBool(row.CFBalanced),
			formatOptFloat(row.Coverage),
		)
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadPanel reads a panel back. Quality-flag columns are not parsed: flags
// describe the panel they were computed on and every rebuild recomputes
// them.
func ReadPanel(path string) (core.Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Panel{}, fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return core.Panel{Fields: []string{}}, nil
	}
	if err != nil {
		return core.Panel{}, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	nid := len(core.IDColumns)
	nflags := len(flagColumns)
	fields := []string{}
	if len(header) > nid+nflags {
		fields = append(fields, header[nid:len(header)-nflags]...)
	}

	p := core.Panel{Fields: fields}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return core.Panel{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		fm, sourceZip := metaFromCells(rec)
		row := core.PanelRow{FilingMeta: fm, SourceZip: sourceZip, Values: make(map[string]float64)}
		for j, field := range fields {
			i := nid + j
			if i >= len(rec) || rec[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				continue
			}
			row.Values[field] = v
		}
		p.Rows = append(p.Rows, row)
	}
	return p, nil
}

// WriteTagCounts serializes the unknown-tag diagnostic table.
func WriteTagCounts(path string, counts []transform.TagCount) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"tag", "count"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, tc := range counts {
		if err := w.Write([]string{tc.Tag, strconv.Itoa(tc.Count)}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatValue(*v)
}

func formatOptBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
