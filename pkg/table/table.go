// Package table holds column-oriented measurement tables parsed from CSV
// or workbook uploads.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

// Cell is a single value. Text always holds the source text; Num is set
// when the text parses as a finite number.
type Cell struct {
	Text  string
	Num   float64
	IsNum bool
}

// NewCell infers the type of a raw value.
func NewCell(raw string) Cell {
	text := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Cell{Text: text, Num: f, IsNum: true}
	}
	return Cell{Text: text}
}

// Empty reports whether the cell carries no value.
func (c Cell) Empty() bool { return !c.IsNum && c.Text == "" }

func (c Cell) String() string { return c.Text }

// Table maps column names to ordered cells. Every column has Len cells.
type Table struct {
	Name    string
	Columns []string
	data    map[string][]Cell
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.data[t.Columns[0]])
}

// Column returns the cells of a column.
func (t *Table) Column(name string) ([]Cell, bool) {
	cells, ok := t.data[name]
	return cells, ok
}

// Numeric returns a column as floats. Every cell must be numeric.
func (t *Table) Numeric(column string) ([]float64, error) {
	cells, ok := t.data[column]
	if !ok {
		return nil, serrors.ColumnNotFound(column).WithContext("table", t.Name)
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		if !c.IsNum {
			return nil, serrors.Parsef(serrors.ErrParseNotNumeric, "column %s has a non-numeric value %q", column, c.Text).
				WithContext("column", column).
				WithContext("row", strconv.Itoa(i+1))
		}
		out[i] = c.Num
	}
	return out, nil
}

// NumericColumns lists the columns whose cells are all numeric, in header order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, name := range t.Columns {
		cells := t.data[name]
		if len(cells) == 0 {
			continue
		}
		numeric := true
		for _, c := range cells {
			if !c.IsNum {
				numeric = false
				break
			}
		}
		if numeric {
			out = append(out, name)
		}
	}
	return out
}

// Records returns the header followed by every row.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.Len()+1)
	records = append(records, append([]string(nil), t.Columns...))
	for i := 0; i < t.Len(); i++ {
		row := make([]string, len(t.Columns))
		for j, name := range t.Columns {
			row[j] = t.data[name][i].Text
		}
		records = append(records, row)
	}
	return records
}

// CSV encodes the table as comma-separated text with a header row.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, serrors.IOWrap(err, serrors.ErrIOWriteFailed, "failed to encode table").
			WithContext("table", t.Name)
	}
	return buf.Bytes(), nil
}

func (t *Table) has(column string) bool {
	_, ok := t.data[column]
	return ok
}

// FromRecords builds a table from a header row and data rows. Rows with a
// missing or empty cell are dropped; the remaining rows keep their order.
func FromRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 || isBlank(records[0]) {
		return nil, serrors.Parse(serrors.ErrParseNoHeader, "file has no header row").
			WithContext("file", name)
	}

	t := &Table{Name: name, data: make(map[string][]Cell)}
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		name := h
		for n := 1; t.has(name); n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		t.Columns = append(t.Columns, name)
		t.data[name] = nil
	}

	for _, rec := range records[1:] {
		if len(rec) < len(t.Columns) {
			continue
		}
		row := make([]Cell, len(t.Columns))
		complete := true
		for j := range t.Columns {
			row[j] = NewCell(rec[j])
			if row[j].Empty() {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for j, col := range t.Columns {
			t.data[col] = append(t.data[col], row[j])
		}
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(strings.TrimPrefix(v, "\ufeff")) != "" {
			return false
		}
	}
	return true
}
