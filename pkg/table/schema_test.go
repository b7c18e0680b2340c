package table

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	tbl := MustNew([]string{"id", "score", "label", "mixed"},
		NewRow(Number(1), Number(0.5), Text("a"), Number(3)),
		NewRow(Number(2), Number(math.NaN()), Text("b"), Text("n/a")),
	)
	schema := Classify(tbl)

	want := map[string]Kind{
		"id":    Numeric,
		"score": Numeric,
		"label": Categorical,
		"mixed": Categorical,
	}
	for name, kind := range want {
		got, ok := schema.Kind(name)
		if !ok || got != kind {
			t.Errorf("Kind(%s) = %v, want %v", name, got, kind)
		}
	}

	if n := len(schema.Numeric()); n != 2 {
		t.Errorf("len(Numeric()) = %d, want 2", n)
	}
	if n := len(schema.Categorical()); n != 2 {
		t.Errorf("len(Categorical()) = %d, want 2", n)
	}
	if cols := schema.Columns(); cols[3].Index != 3 || cols[3].Name != "mixed" {
		t.Errorf("Columns()[3] = %+v", cols[3])
	}
}

func TestClassifyEmptyTable(t *testing.T) {
	schema := Classify(MustNew([]string{"a"}))
	if k, _ := schema.Kind("a"); k != Categorical {
		t.Errorf("Kind(a) = %v, want categorical", k)
	}
}

func TestKindString(t *testing.T) {
	if Numeric.String() != "numeric" || Categorical.String() != "categorical" {
		t.Errorf("String() = %q, %q", Numeric, Categorical)
	}
}
