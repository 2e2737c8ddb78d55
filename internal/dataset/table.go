package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// #region table

// Table is an in-memory column-oriented dataset. All values are held as
// strings; numeric columns are parsed on access. Column order is the
// insertion order.
type Table struct {
	names []string
	cols  map[string][]string
	rows  int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{cols: map[string][]string{}}
}

// AddColumn appends a column. All columns must have equal length.
func (t *Table) AddColumn(name string, values []string) error {
	if _, exists := t.cols[name]; exists {
		return fmt.Errorf("column %s already present", name)
	}
	if len(t.names) > 0 && len(values) != t.rows {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), t.rows)
	}
	t.names = append(t.names, name)
	t.cols[name] = values
	t.rows = len(values)
	return nil
}

// Columns returns column names in insertion order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

// Column returns the named column's values.
func (t *Table) Column(name string) ([]string, bool) {
	vals, ok := t.cols[name]
	return vals, ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// #endregion table

// #region numeric

// NumericColumn parses the named column as float64. Empty values are
// skipped; any other unparseable value fails the whole column.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	vals, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("column %s not found", name)
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// IsNumeric reports whether every non-empty value in the column parses as
// a float.
func (t *Table) IsNumeric(name string) bool {
	vals, ok := t.cols[name]
	if !ok {
		return false
	}
	seen := false
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// DistinctRatio returns distinct non-empty values / total rows, the text
// column heuristic input. Zero for empty tables.
func (t *Table) DistinctRatio(name string) float64 {
	vals, ok := t.cols[name]
	if !ok || len(vals) == 0 {
		return 0
	}
	distinct := map[string]struct{}{}
	for _, v := range vals {
		if v != "" {
			distinct[v] = struct{}{}
		}
	}
	return float64(len(distinct)) / float64(len(vals))
}

// #endregion numeric

// #region json-io

// columnDoc is the JSON wire form of one column.
type columnDoc struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// tableDoc is the JSON wire form of a table. An ordered array keeps column
// order stable across round-trips.
type tableDoc struct {
	Columns []columnDoc `json:"columns"`
}

// ReadJSON loads a table from a JSON column document.
func ReadJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	var doc tableDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse table %s: %w", path, err)
	}
	t := NewTable()
	for _, col := range doc.Columns {
		if err := t.AddColumn(col.Name, col.Values); err != nil {
			return nil, fmt.Errorf("table %s: %w", path, err)
		}
	}
	return t, nil
}

// WriteJSON saves the table as a JSON column document.
func (t *Table) WriteJSON(path string) error {
	doc := tableDoc{}
	for _, name := range t.names {
		doc.Columns = append(doc.Columns, columnDoc{Name: name, Values: t.cols[name]})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write table %s: %w", path, err)
	}
	return nil
}

// #endregion json-io
