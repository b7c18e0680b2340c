// Package synth grows a table to a target row count with perturbed copies of
// its own rows.
//
// # Algorithm
//
// [Expand] classifies the table's columns once (see [table.Classify]) and then
// appends one synthetic row per iteration until the table reaches the target:
//
//  1. Sample a base row uniformly from the original rows. Synthetic rows are
//     never used as bases.
//  2. For each numeric column whose original sample standard deviation is
//     finite and positive, add Gaussian noise with standard deviation
//     NoiseFraction times the column's. Constant and single-valued columns keep
//     the base value exactly.
//  3. For each categorical column, with probability SwapProbability replace the
//     base value with the column's value in a uniformly sampled original row.
//     Categorical values are therefore always values already present in the
//     column.
//
// The original rows come first in their original order, followed by the
// synthetic rows in generation order.
//
// # Randomness
//
// All randomness comes from the [rng.Source] argument. For each synthetic row
// the draws happen in this order: the base row index, one normal variate per
// perturbed numeric column (table order), then one decision per categorical
// column (table order), followed by a row index when the swap fires. The same
// seed and input therefore always produce the same output.
package synth

import (
	"math"
	"slices"

	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/rng"
	"github.com/matzehuels/amplify/pkg/table"
)

// Options configures perturbation strengths.
type Options struct {
	// NoiseFraction scales a numeric column's standard deviation into the
	// standard deviation of the added noise.
	NoiseFraction float64
	// SwapProbability is the per-cell chance of resampling a categorical value.
	SwapProbability float64
}

// DefaultOptions returns the stock perturbation settings.
func DefaultOptions() Options {
	return Options{
		NoiseFraction:   0.2,
		SwapProbability: 0.3,
	}
}

// Validate checks that the options describe a well-formed distribution.
func (o Options) Validate() error {
	if math.IsNaN(o.NoiseFraction) || math.IsInf(o.NoiseFraction, 0) || o.NoiseFraction < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "noise_fraction must be a non-negative number, got %v", o.NoiseFraction)
	}
	return errors.ValidateProbability("swap_probability", o.SwapProbability)
}

// numericPlan holds the noise scale for one numeric column.
type numericPlan struct {
	index int
	sigma float64
}

// categoricalPlan holds the pool a categorical column is resampled from.
type categoricalPlan struct {
	index int
	pool  []table.Value
}

// Expand returns t grown to target rows.
//
// t must have at least one row and one column, and target must be
// non-negative; violations fail with errors.ErrCodeInvalidInput. When target
// does not exceed t.Len(), t itself is returned. A nil opts selects
// DefaultOptions; out-of-range options fail with errors.ErrCodeInvalidConfig
// instead, so callers can tell bad data from bad settings.
func Expand(t *table.Table, target int, src rng.Source, opts *Options) (*table.Table, error) {
	if t == nil || t.Len() == 0 {
		return nil, errors.InvalidInput("table has no rows")
	}
	if t.Width() == 0 {
		return nil, errors.InvalidInput("table has no columns")
	}
	if err := errors.ValidateTargetCount("target row count", target); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.InvalidInput("random source is required")
	}
	if opts == nil {
		def := DefaultOptions()
		opts = &def
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if target <= t.Len() {
		return t, nil
	}

	numeric, categorical := plan(t, opts)
	base := t.Rows()
	acc := make([]table.Row, 0, target-t.Len())

	for t.Len()+len(acc) < target {
		acc = append(acc, synthesize(base, numeric, categorical, src, opts.SwapProbability))
	}

	return t.Append(acc)
}

// plan classifies t once and precomputes per-column perturbation parameters.
func plan(t *table.Table, opts *Options) ([]numericPlan, []categoricalPlan) {
	schema := table.Classify(t)

	var numeric []numericPlan
	for _, col := range schema.Numeric() {
		xs := table.Floats(t.Column(col.Index))
		if len(xs) == 0 || slices.Min(xs) == slices.Max(xs) {
			continue
		}
		sd, ok := table.SampleStdDev(xs)
		if !ok || sd <= 0 {
			continue
		}
		sigma := sd * opts.NoiseFraction
		if sigma <= 0 {
			continue
		}
		numeric = append(numeric, numericPlan{index: col.Index, sigma: sigma})
	}

	categorical := make([]categoricalPlan, 0, len(schema.Categorical()))
	for _, col := range schema.Categorical() {
		categorical = append(categorical, categoricalPlan{index: col.Index, pool: t.Column(col.Index)})
	}
	return numeric, categorical
}

// synthesize draws one perturbed copy of a uniformly sampled base row.
func synthesize(base []table.Row, numeric []numericPlan, categorical []categoricalPlan, src rng.Source, swap float64) table.Row {
	cells := base[src.IntN(len(base))].Cells()

	for _, p := range numeric {
		v, _ := cells[p.index].Float()
		cells[p.index] = table.Number(v + src.NormFloat64()*p.sigma)
	}
	for _, p := range categorical {
		if rng.Bernoulli(src, swap) {
			cells[p.index] = p.pool[src.IntN(len(p.pool))]
		}
	}
	return table.NewRow(cells...)
}
