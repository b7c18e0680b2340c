package table

import (
	"math"
	"testing"

	"github.com/matzehuels/amplify/pkg/errors"
)

func sample() *Table {
	return MustNew([]string{"age", "city"},
		NewRow(Number(31), Text("Oslo")),
		NewRow(Number(45), Text("Lima")),
		NewRow(Number(27), Text("Oslo")),
	)
}

func TestNewValidatesShape(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    []Row
	}{
		{"empty column name", []string{"a", ""}, nil},
		{"duplicate column", []string{"a", "a"}, nil},
		{"short row", []string{"a", "b"}, []Row{NewRow(Number(1))}},
		{"long row", []string{"a"}, []Row{NewRow(Number(1), Number(2))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.columns, tt.rows)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("New() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestTableAccessors(t *testing.T) {
	tbl := sample()

	if tbl.Len() != 3 || tbl.Width() != 2 {
		t.Fatalf("Len, Width = %d, %d, want 3, 2", tbl.Len(), tbl.Width())
	}
	if i, ok := tbl.ColumnIndex("city"); !ok || i != 1 {
		t.Errorf("ColumnIndex(city) = %d, %v", i, ok)
	}
	if _, ok := tbl.ColumnIndex("zip"); ok {
		t.Error("ColumnIndex(zip) should not be found")
	}
	if got := tbl.Row(1).Cell(1).String(); got != "Lima" {
		t.Errorf("Row(1).Cell(1) = %q, want Lima", got)
	}

	col := tbl.Column(0)
	if len(col) != 3 || col[2].String() != "27" {
		t.Errorf("Column(0) = %v", col)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	tbl := sample()

	cols := tbl.Columns()
	cols[0] = "mutated"
	if tbl.Columns()[0] != "age" {
		t.Error("Columns() should return a copy")
	}

	cells := tbl.Row(0).Cells()
	cells[0] = Number(-1)
	if f, _ := tbl.Row(0).Cell(0).Float(); f != 31 {
		t.Error("Row.Cells() should return a copy")
	}
}

func TestAppendLeavesOriginalUntouched(t *testing.T) {
	tbl := sample()
	grown, err := tbl.Append([]Row{NewRow(Number(50), Text("Lima"))})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("original Len = %d, want 3", tbl.Len())
	}
	if grown.Len() != 4 {
		t.Errorf("grown Len = %d, want 4", grown.Len())
	}
	for i := 0; i < tbl.Len(); i++ {
		if !grown.Row(i).Equal(tbl.Row(i)) {
			t.Errorf("row %d changed after Append", i)
		}
	}

	if _, err := tbl.Append([]Row{NewRow(Number(1))}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Append(ragged) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestValueFormatting(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(5), "5"},
		{Number(2.5), "2.5"},
		{Number(1e6), "1000000"},
		{Number(math.NaN()), ""},
		{Text("A"), "A"},
		{Value{}, ""},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueEqual(t *testing.T) {
	if !Number(math.NaN()).Equal(Number(math.NaN())) {
		t.Error("missing numbers should compare equal")
	}
	if Number(1).Equal(Text("1")) {
		t.Error("number and text should never be equal")
	}
	if !Text("x").Equal(Text("x")) {
		t.Error("equal text should compare equal")
	}
}

func TestTableEqual(t *testing.T) {
	if !sample().Equal(sample()) {
		t.Error("identical tables should be equal")
	}
	other := MustNew([]string{"age", "town"}, sample().Rows()...)
	if sample().Equal(other) {
		t.Error("tables with different columns should differ")
	}
}
