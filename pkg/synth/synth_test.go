package synth

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/rng"
	"github.com/matzehuels/amplify/pkg/table"
)

func people() *table.Table {
	return table.MustNew([]string{"age", "city", "active"},
		table.NewRow(table.Number(31), table.Text("Oslo"), table.Text("true")),
		table.NewRow(table.Number(45), table.Text("Lima"), table.Text("false")),
		table.NewRow(table.Number(27), table.Text("Kyiv"), table.Text("true")),
		table.NewRow(table.Number(52), table.Text("Oslo"), table.Text("false")),
	)
}

func TestExpandInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		table  *table.Table
		target int
	}{
		{"nil table", nil, 5},
		{"zero rows", table.MustNew([]string{"a"}), 5},
		{"zero columns", table.MustNew(nil, table.NewRow()), 5},
		{"negative target", people(), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Expand(tt.table, tt.target, rng.New(1), nil)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Expand() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
			if out != nil {
				t.Error("Expand() should not return a table on error")
			}
		})
	}
}

func TestExpandInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative noise", Options{NoiseFraction: -0.1, SwapProbability: 0.3}},
		{"nan noise", Options{NoiseFraction: math.NaN(), SwapProbability: 0.3}},
		{"probability above one", Options{NoiseFraction: 0.2, SwapProbability: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(people(), 10, rng.New(1), &tt.opts)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Expand() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
			if errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Expand() error = %v, bad options must not report %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestExpandNoGrowth(t *testing.T) {
	in := people()
	for _, target := range []int{0, 1, in.Len()} {
		out, err := Expand(in, target, rng.New(1), nil)
		if err != nil {
			t.Fatalf("Expand(%d) error: %v", target, err)
		}
		if out != in {
			t.Errorf("Expand(%d) should return the input unchanged", target)
		}
	}
}

func TestExpandEqualTargetTwoRows(t *testing.T) {
	in := table.MustNew([]string{"v"},
		table.NewRow(table.Number(1)),
		table.NewRow(table.Number(2)),
	)
	out, err := Expand(in, 2, rng.New(1), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if out.Len() != 2 || !out.Equal(in) {
		t.Errorf("Expand(T, 2) = %d rows, want the 2-row input", out.Len())
	}
}

func TestExpandExactRowCount(t *testing.T) {
	in := people()
	for _, target := range []int{5, 10, 137} {
		out, err := Expand(in, target, rng.New(uint64(target)), nil)
		if err != nil {
			t.Fatalf("Expand(%d) error: %v", target, err)
		}
		if out.Len() != target {
			t.Errorf("Expand(%d).Len() = %d", target, out.Len())
		}
	}
}

func TestExpandPreservesOriginals(t *testing.T) {
	in := people()
	snapshot := in.Rows()

	out, err := Expand(in, 50, rng.New(2), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	for i, r := range snapshot {
		if !out.Row(i).Equal(r) {
			t.Errorf("output row %d differs from original", i)
		}
		if !in.Row(i).Equal(r) {
			t.Errorf("input row %d was mutated", i)
		}
	}
	if in.Len() != len(snapshot) {
		t.Errorf("input Len = %d, want %d", in.Len(), len(snapshot))
	}
}

func TestExpandConstantColumnStable(t *testing.T) {
	for _, v := range []float64{5, 0.1, 0.7, 1.1, 3.3} {
		for _, n := range []int{3, 6, 7, 10} {
			t.Run(fmt.Sprintf("%v x %d", v, n), func(t *testing.T) {
				rows := make([]table.Row, n)
				for i := range rows {
					rows[i] = table.NewRow(table.Number(v), table.Number(float64(i)))
				}
				in := table.MustNew([]string{"const", "spread"}, rows...)

				out, err := Expand(in, 2000, rng.New(1), nil)
				if err != nil {
					t.Fatalf("Expand() error: %v", err)
				}
				if out.Len() != 2000 {
					t.Fatalf("Len() = %d, want 2000", out.Len())
				}
				perturbed := 0
				for i := 0; i < out.Len(); i++ {
					if f, ok := out.Row(i).Cell(0).Float(); !ok || f != v {
						perturbed++
					}
				}
				if perturbed > 0 {
					t.Errorf("perturbed = %d/%d, want 0 (every cell exactly %v)", perturbed, out.Len(), v)
				}
			})
		}
	}
}

func TestExpandSingleRowIsUnperturbed(t *testing.T) {
	in := table.MustNew([]string{"v", "tag"},
		table.NewRow(table.Number(3.5), table.Text("x")),
	)
	out, err := Expand(in, 20, rng.New(4), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	for i := 0; i < out.Len(); i++ {
		if !out.Row(i).Equal(in.Row(0)) {
			t.Errorf("row %d = %v, want copy of the only row", i, out.Row(i).Cells())
		}
	}
}

func TestExpandCategoricalClosure(t *testing.T) {
	in := people()
	observed := map[int]map[string]bool{1: {}, 2: {}}
	for i := 0; i < in.Len(); i++ {
		for col := range observed {
			observed[col][in.Row(i).Cell(col).String()] = true
		}
	}

	opts := Options{NoiseFraction: 0.2, SwapProbability: 1}
	out, err := Expand(in, 500, rng.New(5), &opts)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	for i := 0; i < out.Len(); i++ {
		for col, values := range observed {
			cell := out.Row(i).Cell(col)
			if cell.IsNumber() || !values[cell.String()] {
				t.Errorf("row %d column %d = %v, not an observed category", i, col, cell)
			}
		}
	}
}

func TestExpandSingleCategory(t *testing.T) {
	in := table.MustNew([]string{"grade"},
		table.NewRow(table.Text("A")),
		table.NewRow(table.Text("A")),
	)
	out, err := Expand(in, 25, rng.New(6), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	for i := 0; i < out.Len(); i++ {
		if got := out.Row(i).Cell(0).String(); got != "A" {
			t.Errorf("row %d = %q, want A", i, got)
		}
	}
}

func TestExpandZeroSwapCopiesBaseRows(t *testing.T) {
	in := table.MustNew([]string{"n", "label"},
		table.NewRow(table.Number(1), table.Text("a")),
		table.NewRow(table.Number(1), table.Text("b")),
	)
	opts := Options{NoiseFraction: 0.2, SwapProbability: 0}
	out, err := Expand(in, 40, rng.New(7), &opts)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	for i := in.Len(); i < out.Len(); i++ {
		r := out.Row(i)
		if !r.Equal(in.Row(0)) && !r.Equal(in.Row(1)) {
			t.Errorf("row %d = %v, want a copy of an original row", i, r.Cells())
		}
	}
}

func TestExpandNoiseScale(t *testing.T) {
	in := table.MustNew([]string{"v"},
		table.NewRow(table.Number(0)),
		table.NewRow(table.Number(10)),
	)
	sd, _ := table.SampleStdDev([]float64{0, 10})
	want := 0.2 * sd

	out, err := Expand(in, 20002, rng.New(8), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}

	var sum, sumSq float64
	n := 0
	for i := in.Len(); i < out.Len(); i++ {
		v, _ := out.Row(i).Cell(0).Float()
		base := 0.0
		if v > 5 {
			base = 10
		}
		d := v - base
		sum += d
		sumSq += d * d
		n++
	}
	mean := sum / float64(n)
	got := math.Sqrt(sumSq/float64(n) - mean*mean)

	if math.Abs(mean) > 0.05 {
		t.Errorf("noise mean = %v, want ~0", mean)
	}
	if math.Abs(got-want)/want > 0.05 {
		t.Errorf("noise stddev = %v, want ~%v", got, want)
	}
}

func TestExpandMissingNumbersStayMissing(t *testing.T) {
	in := table.MustNew([]string{"v"},
		table.NewRow(table.Number(math.NaN())),
		table.NewRow(table.Number(1)),
		table.NewRow(table.Number(3)),
	)
	out, err := Expand(in, 60, rng.New(9), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if k, _ := table.Classify(out).Kind("v"); k != table.Numeric {
		t.Errorf("column kind after expansion = %v, want numeric", k)
	}
	for i := 0; i < out.Len(); i++ {
		if !out.Row(i).Cell(0).IsNumber() {
			t.Errorf("row %d lost its numeric type", i)
		}
	}
}

func TestExpandDeterministic(t *testing.T) {
	a, err := Expand(people(), 64, rng.New(42), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	b, err := Expand(people(), 64, rng.New(42), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if !a.Equal(b) {
		t.Error("same seed should reproduce identical output")
	}

	c, err := Expand(people(), 64, rng.New(43), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if a.Equal(c) {
		t.Error("different seeds should produce different output")
	}
}

func TestExpandWithLockedSource(t *testing.T) {
	out, err := Expand(people(), 30, rng.NewLocked(1), nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if out.Len() != 30 {
		t.Errorf("Len() = %d, want 30", out.Len())
	}
}
