package output

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	borderStyle = lipgloss.NewStyle().Foreground(ColorDimGray)
	numberStyle = lipgloss.NewStyle().Align(lipgloss.Right)
)

// Table collects rows for a bordered summary. Cells in the status column are
// colored by statusStyle; cells that parse as numbers are right-aligned.
type Table struct {
	headers   []string
	rows      [][]string
	statusCol int
}

// NewTable creates a table with the given headers and no status column.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, statusCol: -1}
}

// StatusColumn marks the column holding status words such as StatusApplied.
// Unknown headers are ignored.
func (t *Table) StatusColumn(header string) *Table {
	for i, h := range t.headers {
		if h == header {
			t.statusCol = i
		}
	}
	return t
}

// Row appends a row. Short rows are padded with empty cells.
func (t *Table) Row(cells ...string) *Table {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	t.rows = append(t.rows, cells)
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) cellStyle(row, col int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	if row < 0 || row >= len(t.rows) || col >= len(t.rows[row]) {
		return lipgloss.NewStyle()
	}
	cell := t.rows[row][col]
	if col == t.statusCol {
		return statusStyle(cell)
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return numberStyle
	}
	return lipgloss.NewStyle()
}

// String renders the table.
func (t *Table) String() string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.headers...).
		StyleFunc(t.cellStyle).
		Rows(t.rows...)
	return tbl.String()
}
