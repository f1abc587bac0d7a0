// Package dataset loads archival article tables and turns them into
// canonical articles.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Table is a CSV file held in memory: a header and string rows. Rows are
// padded to the header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a table and indexes its header.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, Header: header, Rows: rows}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Header[i] = h
		// The first occurrence of a duplicated column wins.
		if _, dup := t.index[h]; !dup && h != "" {
			t.index[h] = i
		}
	}
	for i, row := range t.Rows {
		if len(row) < len(t.Header) {
			padded := make([]string, len(t.Header))
			copy(padded, row)
			t.Rows[i] = padded
		}
	}
}

// Column returns the position of the first column named by any of names.
func (t *Table) Column(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := t.index[n]; ok {
			return i, true
		}
	}
	return -1, false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ReadTable parses a comma separated table whose first record is the
// header. An unnamed leading column (a written row index) is kept but never
// selected.
func ReadTable(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty table", name)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		rows = append(rows, rec)
	}
	return NewTable(name, header, rows), nil
}

// LoadTables reads path, which is either one CSV file or a directory whose
// *.csv files are read in name order.
func LoadTables(path string) ([]*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", path, err)
		}
		sort.Strings(files)
		if len(files) == 0 {
			return nil, fmt.Errorf("%s: no csv files", path)
		}
	}

	tables := make([]*Table, 0, len(files))
	for _, f := range files {
		t, err := LoadTable(f)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// LoadTable reads a single CSV file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(filepath.Base(path), f)
}

// Join inner-joins t with meta on the url column. The metadata title column
// is discarded. For content, outlet and date the metadata columns replace
// any raw columns of the same field; other metadata columns absent from t
// are appended. URLs without a metadata row are dropped, and only the first
// metadata row for a URL is used.
func Join(t, meta *Table) (*Table, error) {
	leftURL, ok := t.Column("url")
	if !ok {
		return nil, fmt.Errorf("%s: no url column", t.Name)
	}
	rightURL, ok := meta.Column("url")
	if !ok {
		return nil, fmt.Errorf("%s: no url column", meta.Name)
	}

	byURL := make(map[string][]string, len(meta.Rows))
	for _, row := range meta.Rows {
		u := strings.TrimSpace(row[rightURL])
		if _, seen := byURL[u]; !seen {
			byURL[u] = row
		}
	}

	replaced := make(map[string]bool)
	for _, field := range [][]string{contentColumns, outletColumns, dateColumns} {
		if _, ok := meta.Column(field...); ok {
			for _, name := range field {
				replaced[name] = true
			}
		}
	}

	var header []string
	var kept []int
	for i, h := range t.Header {
		if replaced[h] {
			continue
		}
		header = append(header, h)
		kept = append(kept, i)
	}
	var extra []int
	for i, h := range meta.Header {
		if h == "" || h == "url" || h == "title" {
			continue
		}
		if _, exists := t.index[h]; exists && !replaced[h] {
			continue
		}
		header = append(header, h)
		extra = append(extra, i)
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m, ok := byURL[strings.TrimSpace(row[leftURL])]
		if !ok {
			continue
		}
		joined := make([]string, 0, len(header))
		for _, i := range kept {
			joined = append(joined, row[i])
		}
		for _, i := range extra {
			joined = append(joined, m[i])
		}
		rows = append(rows, joined)
	}
	return NewTable(t.Name, header, rows), nil
}
