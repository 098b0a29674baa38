// Package frame defines the canonical in-memory data shapes produced by readers
// and consumed by the processing-spec executor and the assembler.
package frame

import "fmt"

// Kind distinguishes row/column sources from key/value sources.
type Kind int

const (
	// Tabular sources are column-oriented tables (CSV, SQLite, JSON records).
	Tabular Kind = iota
	// Structured sources are nested key/value documents (JSON, YAML).
	Structured
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Tabular:
		return "tabular"
	case Structured:
		return "structured"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Table is a column-ordered table. Column names are unique. Every row has
// exactly len(Columns) cells; a nil cell is a missing value.
type Table struct {
	Columns []string
	Rows    [][]any

	// Index names the column promoted to row identifier, if any.
	Index string
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Append adds a row. It panics if the arity does not match the columns.
func (t *Table) Append(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("frame: row has %d values, table has %d columns", len(values), len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
}

// Value returns the cell at row i in the named column, nil when the column is absent.
func (t *Table) Value(i int, column string) any {
	j := t.ColumnIndex(column)
	if j < 0 {
		return nil
	}
	return t.Rows[i][j]
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) []any {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[j]
	}
	return out
}

// Row returns row i as a column-keyed map.
func (t *Table) Row(i int) map[string]any {
	m := make(map[string]any, len(t.Columns))
	for j, c := range t.Columns {
		m[c] = t.Rows[i][j]
	}
	return m
}

// Records returns every row as a column-keyed map.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Row(i)
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]any, len(t.Rows)),
		Index:   t.Index,
	}
	for i, r := range t.Rows {
		c.Rows[i] = append([]any(nil), r...)
	}
	return c
}

// FromRecords builds a table from maps using the given column order.
// Keys missing from a record become nil cells.
func FromRecords(columns []string, records []map[string]any) *Table {
	t := NewTable(columns...)
	for _, rec := range records {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = Normalize(rec[c])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
