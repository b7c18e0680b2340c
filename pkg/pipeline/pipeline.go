// Package pipeline runs amplify's two jobs end to end: expanding a CSV table
// and augmenting a zip archive of images.
//
// Both CLI and library callers go through a [Runner], which owns caching,
// logging and observability so that the core packages stay pure.
//
// # Expand
//
//	decode CSV → synth.Expand → encode CSV
//
// # Augment
//
//	allocate workspace → extract archive → collect images → decode and
//	canonicalise → augment.Batch → encode img_<i>.<ext> → zip
//
// # Seeds and caching
//
// A seed of 0 asks for a fresh random seed; such runs are never cached. Any
// other seed makes the run reproducible, and its output is cached under a key
// derived from the input hash, the options and the seed.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Expand(ctx, csvBytes, pipeline.ExpandOptions{Rows: 1000, Seed: 7})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("sales_expanded.csv", res.CSV, 0o644)
package pipeline

import (
	"strconv"
	"time"

	"github.com/matzehuels/amplify/pkg/augment"
	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/io"
	"github.com/matzehuels/amplify/pkg/synth"
	"github.com/matzehuels/amplify/pkg/table"
)

// =============================================================================
// Options
// =============================================================================

// ExpandOptions configures Runner.Expand.
type ExpandOptions struct {
	Rows    int            // target row count
	Seed    uint64         // 0 draws a fresh seed
	Synth   *synth.Options // nil selects synth.DefaultOptions
	CSV     io.CSVOptions
	Refresh bool // ignore cached results
}

// AugmentOptions configures Runner.Augment.
type AugmentOptions struct {
	Count   int             // images to produce
	Seed    uint64          // 0 draws a fresh seed
	Params  *augment.Params // nil selects augment.DefaultParams
	Workers int             // <= 0 uses GOMAXPROCS
	Format  io.Format       // empty selects JPEG
	Quality int             // JPEG quality; <= 0 uses io.DefaultJPEGQuality
	WorkDir string          // parent of the job directory; empty uses os.TempDir
	Refresh bool            // ignore cached results
}

// ValidateAndSetDefaults fills in nil fields and checks the rest.
func (o *ExpandOptions) ValidateAndSetDefaults() error {
	if err := errors.ValidateTargetCount("target row count", o.Rows); err != nil {
		return err
	}
	if o.Synth == nil {
		def := synth.DefaultOptions()
		o.Synth = &def
	}
	return o.Synth.Validate()
}

// ValidateAndSetDefaults fills in nil fields and checks the rest.
func (o *AugmentOptions) ValidateAndSetDefaults() error {
	if err := errors.ValidateTargetCount("image count", o.Count); err != nil {
		return err
	}
	if o.Params == nil {
		def := augment.DefaultParams()
		o.Params = &def
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	f, err := io.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	if o.Quality <= 0 {
		o.Quality = io.DefaultJPEGQuality
	}
	if o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "quality must be within [1, 100], got %d", o.Quality)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// ExpandResult is the output of Runner.Expand.
type ExpandResult struct {
	Table  *table.Table
	CSV    []byte
	Stats  ExpandStats
	Cached bool   // whether the output came from the cache
	Seed   uint64 // seed actually used
}

// ExpandStats describes an expansion.
type ExpandStats struct {
	InputRows  int
	OutputRows int
	Duration   time.Duration
}

// AugmentResult is the output of Runner.Augment.
type AugmentResult struct {
	Archive []byte
	JobID   string
	Sources int // images found in the input archive
	Count   int // images in the output archive
	Stats   AugmentStats
	Cached  bool
	Seed    uint64
}

// AugmentStats contains per-stage timings.
type AugmentStats struct {
	DecodeTime  time.Duration
	AugmentTime time.Duration
	EncodeTime  time.Duration
	Duration    time.Duration
}

// OutputName returns the member name of the i-th generated image.
func OutputName(i int, f io.Format) string {
	return "img_" + strconv.Itoa(i) + f.Ext()
}
