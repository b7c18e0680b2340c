package table

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"
)

// ColumnProfile summarises one column.
// The numeric fields are only meaningful when Kind is Numeric and Present > 0;
// otherwise they are NaN.
type ColumnProfile struct {
	Name     string
	Kind     Kind
	Count    int // cells, including missing ones
	Present  int // non-missing cells
	Distinct int // distinct non-missing values
	Mean     float64
	StdDev   float64 // sample standard deviation; NaN with fewer than two values
	Min      float64
	Max      float64
}

// Profile computes a ColumnProfile for every column of t, using the
// classification from Classify.
func Profile(t *Table) []ColumnProfile {
	schema := Classify(t)
	out := make([]ColumnProfile, 0, t.Width())
	for _, col := range schema.Columns() {
		cells := t.Column(col.Index)
		p := ColumnProfile{
			Name:   col.Name,
			Kind:   col.Kind,
			Count:  len(cells),
			Mean:   math.NaN(),
			StdDev: math.NaN(),
			Min:    math.NaN(),
			Max:    math.NaN(),
		}
		seen := make(map[Value]struct{})
		for _, c := range cells {
			if c.IsMissing() {
				continue
			}
			p.Present++
			seen[c] = struct{}{}
		}
		p.Distinct = len(seen)

		if col.Kind == Numeric {
			data := stats.Float64Data(Floats(cells))
			if len(data) > 0 {
				p.Mean, _ = stats.Mean(data)
				p.Min, _ = stats.Min(data)
				p.Max, _ = stats.Max(data)
			}
			if sd, ok := SampleStdDev(data); ok {
				p.StdDev = sd
			}
		}
		out = append(out, p)
	}
	return out
}

// Floats returns the non-missing numbers among cells, in order.
func Floats(cells []Value) []float64 {
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if f, ok := c.Float(); ok && !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

// SampleStdDev returns the sample (n-1) standard deviation of xs.
// It reports false when the value is undefined: fewer than two samples or a
// non-finite result. Constant input yields exactly 0.
func SampleStdDev(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	// The mean of repeated fractional values can be off by an ulp, which
	// would otherwise leave a tiny positive deviation.
	if slices.Min(xs) == slices.Max(xs) {
		return 0, true
	}
	sd, err := stats.StandardDeviationSample(stats.Float64Data(xs))
	if err != nil || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0, false
	}
	return sd, true
}
