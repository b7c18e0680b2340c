package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/amplify/pkg/augment"
	"github.com/matzehuels/amplify/pkg/cache"
	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/io"
	"github.com/matzehuels/amplify/pkg/observability"
	"github.com/matzehuels/amplify/pkg/rng"
	"github.com/matzehuels/amplify/pkg/synth"
	"github.com/matzehuels/amplify/pkg/workspace"
)

// Runner executes jobs with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store job results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    TTL
}

// TTL holds cache lifetimes per job kind.
type TTL struct {
	Expand  time.Duration
	Augment time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    TTL{Expand: cache.TTLExpand, Augment: cache.TTLAugment},
	}
}

// Expand decodes csv, grows it to opts.Rows rows and encodes the result.
func (r *Runner) Expand(ctx context.Context, csv []byte, opts ExpandOptions) (*ExpandResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	t, err := io.ReadCSV(bytes.NewReader(csv), opts.CSV)
	if err != nil {
		return nil, err
	}
	seed, cacheable := resolveSeed(opts.Seed)
	res := &ExpandResult{Seed: seed, Stats: ExpandStats{InputRows: t.Len()}}

	key := r.Keyer.ExpandKey(cache.Hash(csv), cache.ExpandKeyOpts{
		Rows:            opts.Rows,
		Seed:            seed,
		NoiseFraction:   opts.Synth.NoiseFraction,
		SwapProbability: opts.Synth.SwapProbability,
		Comma:           opts.CSV.Comma,
	})
	if cacheable && !opts.Refresh {
		if data, ok := r.lookup(ctx, "expand", key); ok {
			// Output is always comma-separated.
			if out, err := io.ReadCSV(bytes.NewReader(data), io.CSVOptions{}); err == nil {
				res.Table, res.CSV, res.Cached = out, data, true
				res.Stats.OutputRows = out.Len()
				res.Stats.Duration = time.Since(start)
				r.Logger.Info("expanded table", "rows", out.Len(), "cached", true)
				return res, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnExpandStart(ctx, t.Len(), opts.Rows)
	out, err := synth.Expand(t, opts.Rows, rng.New(seed), opts.Synth)
	if err != nil {
		hooks.OnExpandComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := io.WriteCSV(&buf, out); err != nil {
		hooks.OnExpandComplete(ctx, 0, time.Since(start), err)
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	res.Table, res.CSV = out, buf.Bytes()
	res.Stats.OutputRows = out.Len()
	res.Stats.Duration = time.Since(start)
	hooks.OnExpandComplete(ctx, out.Len(), res.Stats.Duration, nil)

	if cacheable {
		r.store(ctx, "expand", key, res.CSV, r.TTL.Expand)
	}
	r.Logger.Info("expanded table",
		"input_rows", t.Len(),
		"rows", out.Len(),
		"seed", seed,
		"duration", res.Stats.Duration)
	return res, nil
}

// Augment unpacks the zip in archive, produces opts.Count augmented images
// and packages them as a new zip.
func (r *Runner) Augment(ctx context.Context, archive []byte, opts AugmentOptions) (*AugmentResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	job, err := workspace.New(opts.WorkDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "allocate workspace")
	}
	defer func() {
		if err := job.Cleanup(); err != nil {
			r.Logger.Warn("workspace cleanup failed", "dir", job.Dir(), "err", err)
		}
	}()
	r.Logger.Debug("allocated workspace", "job", job.ID(), "dir", job.Dir())

	extractDir, err := job.Mkdir("extract")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create extract dir")
	}
	if _, err := io.ExtractArchive(archive, extractDir); err != nil {
		return nil, err
	}
	paths, err := io.CollectImages(extractDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.InvalidInput("no images found in archive")
	}
	r.Logger.Debug("collected images", "job", job.ID(), "sources", len(paths))

	seed, cacheable := resolveSeed(opts.Seed)
	res := &AugmentResult{JobID: job.ID(), Sources: len(paths), Count: opts.Count, Seed: seed}

	key := r.Keyer.AugmentKey(cache.Hash(archive), augmentKeyOpts(opts, seed))
	if cacheable && !opts.Refresh {
		if data, ok := r.lookup(ctx, "augment", key); ok {
			res.Archive, res.Cached = data, true
			res.Stats.Duration = time.Since(start)
			r.Logger.Info("augmented images", "job", job.ID(), "count", opts.Count, "cached", true)
			return res, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnAugmentStart(ctx, len(paths), opts.Count)
	archiveOut, err := r.runBatch(ctx, extractDir, paths, seed, opts, &res.Stats)
	res.Stats.Duration = time.Since(start)
	hooks.OnAugmentComplete(ctx, opts.Count, res.Stats.Duration, err)
	if err != nil {
		return nil, err
	}
	res.Archive = archiveOut

	if cacheable {
		r.store(ctx, "augment", key, res.Archive, r.TTL.Augment)
	}
	r.Logger.Info("augmented images",
		"job", job.ID(),
		"sources", len(paths),
		"count", opts.Count,
		"seed", seed,
		"duration", res.Stats.Duration)
	return res, nil
}

func (r *Runner) runBatch(ctx context.Context, root string, paths []string, seed uint64, opts AugmentOptions, stats *AugmentStats) ([]byte, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	t := time.Now()
	corpus, err := decodeCorpus(ctx, root, paths, workers)
	if err != nil {
		return nil, err
	}
	stats.DecodeTime = time.Since(t)
	r.Logger.Debug("decoded corpus", "images", len(corpus), "duration", stats.DecodeTime)

	t = time.Now()
	samples, err := augment.Batch(ctx, corpus, opts.Count, rng.New(seed), opts.Params, workers)
	if err != nil {
		return nil, err
	}
	stats.AugmentTime = time.Since(t)
	r.Logger.Debug("augmented batch", "images", len(samples), "workers", workers, "duration", stats.AugmentTime)

	t = time.Now()
	files, err := encodeSamples(ctx, samples, opts.Format, opts.Quality, workers)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := io.WriteArchive(&buf, files); err != nil {
		return nil, err
	}
	stats.EncodeTime = time.Since(t)
	r.Logger.Debug("encoded archive", "bytes", buf.Len(), "duration", stats.EncodeTime)
	return buf.Bytes(), nil
}

// decodeCorpus loads every image in canonical opaque form, preserving order.
func decodeCorpus(ctx context.Context, root string, paths []string, workers int) ([]image.Image, error) {
	corpus := make([]image.Image, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := decodeFile(p)
			if err != nil {
				rel, _ := filepath.Rel(root, p)
				return fmt.Errorf("%s: %w", filepath.ToSlash(rel), err)
			}
			corpus[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return corpus, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := io.DecodeImage(f)
	if err != nil {
		return nil, err
	}
	return io.Canonical(img), nil
}

func encodeSamples(ctx context.Context, samples []augment.Sample, f io.Format, quality, workers int) ([]io.ArchiveFile, error) {
	files := make([]io.ArchiveFile, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := io.EncodeImage(&buf, s.Image, f, quality); err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			files[i] = io.ArchiveFile{Name: OutputName(i, f), Data: buf.Bytes()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key from the cache. Backend errors are logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, kind, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "kind", kind, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	r.Logger.Debug("cache hit", "kind", kind)
	return data, true
}

// store writes data to the cache. Failures are logged, never returned.
func (r *Runner) store(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// resolveSeed maps 0 to a fresh seed. Only explicit seeds are cacheable.
func resolveSeed(seed uint64) (uint64, bool) {
	if seed != 0 {
		return seed, true
	}
	return rng.FreshSeed(), false
}

func augmentKeyOpts(opts AugmentOptions, seed uint64) cache.AugmentKeyOpts {
	p := opts.Params
	return cache.AugmentKeyOpts{
		Count:             opts.Count,
		Seed:              seed,
		RotateProbability: p.RotateProbability,
		MaxRotation:       p.MaxRotation,
		FlipProbability:   p.FlipProbability,
		BrightnessMin:     p.BrightnessMin,
		BrightnessMax:     p.BrightnessMax,
		ContrastMin:       p.ContrastMin,
		ContrastMax:       p.ContrastMax,
		Fill:              fmt.Sprintf("#%02x%02x%02x", p.Fill.R, p.Fill.G, p.Fill.B),
		Format:            string(opts.Format),
		Quality:           opts.Quality,
	}
}
