package augment

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/rng"
)

// Sample is one batch output together with the corpus index it came from.
type Sample struct {
	Index  int // position in the batch
	Source int // index into the corpus
	Image  *image.NRGBA
}

type trial struct {
	source int
	seed   uint64
}

// Batch produces n augmented images from corpus. Each trial picks a source
// uniformly at random with replacement and augments it with a private
// generator seeded from src.
//
// An empty corpus or a negative n fails with errors.ErrCodeInvalidInput
// before any trial runs, as invalid Params do with errors.ErrCodeInvalidConfig.
// workers bounds parallelism; values <= 0 use
// GOMAXPROCS. Cancelling ctx abandons outstanding trials and returns the
// context's error.
func Batch(ctx context.Context, corpus []image.Image, n int, src rng.Source, p *Params, workers int) ([]Sample, error) {
	if len(corpus) == 0 {
		return nil, errors.InvalidInput("image corpus is empty")
	}
	if err := errors.ValidateTargetCount("image count", n); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.InvalidInput("random source is required")
	}
	p, err := resolve(p)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trials := make([]trial, n)
	for i := range trials {
		trials[i] = trial{source: src.IntN(len(corpus)), seed: src.Uint64()}
	}

	out := make([]Sample, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, tr := range trials {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := Augment(corpus[tr.source], rng.New(tr.seed), p)
			if err != nil {
				return fmt.Errorf("trial %d (source %d): %w", i, tr.source, err)
			}
			out[i] = Sample{Index: i, Source: tr.source, Image: img}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
