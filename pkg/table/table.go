package table

import (
	"slices"

	"github.com/matzehuels/amplify/pkg/errors"
)

// Row is an immutable ordered list of cells aligned with its table's columns.
type Row struct {
	cells []Value
}

// NewRow builds a row from cells. The slice is copied.
func NewRow(cells ...Value) Row {
	return Row{cells: slices.Clone(cells)}
}

// Len returns the number of cells.
func (r Row) Len() int { return len(r.cells) }

// Cell returns the i-th cell.
func (r Row) Cell(i int) Value { return r.cells[i] }

// Cells returns a copy of the row's cells.
func (r Row) Cells() []Value { return slices.Clone(r.cells) }

// Equal reports whether both rows hold equal cells in the same order.
func (r Row) Equal(o Row) bool {
	return slices.EqualFunc(r.cells, o.cells, Value.Equal)
}

// Table is an ordered sequence of rows sharing one ordered set of columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New builds a table and checks its shape: column names must be non-empty and
// unique, and every row must have exactly one cell per column.
func New(columns []string, rows []Row) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, errors.InvalidInput("column %d has an empty name", i)
		}
		if _, dup := index[c]; dup {
			return nil, errors.InvalidInput("duplicate column name %q", c)
		}
		index[c] = i
	}
	for i, r := range rows {
		if r.Len() != len(columns) {
			return nil, errors.InvalidInput("row %d has %d cells, want %d", i, r.Len(), len(columns))
		}
	}
	return &Table{
		columns: slices.Clone(columns),
		index:   index,
		rows:    slices.Clone(rows),
	}, nil
}

// MustNew is like New but panics on error. It is intended for tests and fixtures.
func MustNew(columns []string, rows ...Row) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns a copy of the row slice. Rows themselves are immutable.
func (t *Table) Rows() []Row { return slices.Clone(t.rows) }

// Column returns the cells of column i, top to bottom.
func (t *Table) Column(i int) []Value {
	out := make([]Value, len(t.rows))
	for r, row := range t.rows {
		out[r] = row.cells[i]
	}
	return out
}

// Append returns a new table holding t's rows followed by extra.
// t is left untouched.
func (t *Table) Append(extra []Row) (*Table, error) {
	for i, r := range extra {
		if r.Len() != len(t.columns) {
			return nil, errors.InvalidInput("appended row %d has %d cells, want %d", i, r.Len(), len(t.columns))
		}
	}
	rows := make([]Row, 0, len(t.rows)+len(extra))
	rows = append(rows, t.rows...)
	rows = append(rows, extra...)
	return &Table{columns: t.columns, index: t.index, rows: rows}, nil
}

// Equal reports whether both tables have the same columns and rows in order.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	return slices.Equal(t.columns, o.columns) && slices.EqualFunc(t.rows, o.rows, Row.Equal)
}
