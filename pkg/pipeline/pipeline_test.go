package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/io"
	"github.com/matzehuels/amplify/pkg/observability"
	"github.com/matzehuels/amplify/pkg/synth"
)

const salesCSV = "region,sales\nnorth,10\nsouth,20\neast,30\n"

// memCache is an in-memory cache that counts writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = bytes.Clone(data)
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func quietRunner(c *memCache) *Runner {
	logger := log.New(&bytes.Buffer{})
	if c == nil {
		return NewRunner(nil, nil, logger)
	}
	return NewRunner(c, nil, logger)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(20 * x), G: uint8(30 * y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func archiveOf(t *testing.T, files ...io.ArchiveFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := io.WriteArchive(&buf, files); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func imageArchive(t *testing.T) []byte {
	return archiveOf(t,
		io.ArchiveFile{Name: "photos/wide.png", Data: pngBytes(t, 12, 6)},
		io.ArchiveFile{Name: "square.png", Data: pngBytes(t, 5, 5)},
		io.ArchiveFile{Name: "notes.txt", Data: []byte("not an image")},
	)
}

func readArchive(t *testing.T, data []byte) map[string]image.Image {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	out := make(map[string]image.Image)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		img, err := io.DecodeImage(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("%s: %v", f.Name, err)
		}
		out[f.Name] = img
	}
	return out
}

func TestExpand(t *testing.T) {
	res, err := quietRunner(nil).Expand(context.Background(), []byte(salesCSV), ExpandOptions{Rows: 10, Seed: 5})
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if res.Table.Len() != 10 || res.Stats.OutputRows != 10 || res.Stats.InputRows != 3 {
		t.Errorf("rows = %d/%d/%d, want 10/10/3", res.Table.Len(), res.Stats.OutputRows, res.Stats.InputRows)
	}
	if res.Seed != 5 || res.Cached {
		t.Errorf("Seed = %d, Cached = %v; want 5, false", res.Seed, res.Cached)
	}
	if !strings.HasPrefix(string(res.CSV), salesCSV) {
		t.Error("output CSV should start with the original rows")
	}
	if got := strings.Count(string(res.CSV), "\n"); got != 11 {
		t.Errorf("output lines = %d, want 11", got)
	}
}

func TestExpandDeterministic(t *testing.T) {
	r := quietRunner(nil)
	a, err := r.Expand(context.Background(), []byte(salesCSV), ExpandOptions{Rows: 50, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Expand(context.Background(), []byte(salesCSV), ExpandOptions{Rows: 50, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.CSV, b.CSV) {
		t.Error("same seed should give identical output")
	}
}

func TestExpandFreshSeed(t *testing.T) {
	c := newMemCache()
	res, err := quietRunner(c).Expand(context.Background(), []byte(salesCSV), ExpandOptions{Rows: 8})
	if err != nil {
		t.Fatal(err)
	}
	if res.Seed == 0 {
		t.Error("a fresh seed should be reported")
	}
	if c.sets != 0 {
		t.Errorf("unseeded runs should not be cached, got %d writes", c.sets)
	}
}

func TestExpandCache(t *testing.T) {
	c := newMemCache()
	r := quietRunner(c)
	ctx := context.Background()
	opts := ExpandOptions{Rows: 20, Seed: 3}

	first, err := r.Expand(ctx, []byte(salesCSV), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || c.sets != 1 {
		t.Fatalf("first run: Cached = %v, sets = %d; want false, 1", first.Cached, c.sets)
	}

	second, err := r.Expand(ctx, []byte(salesCSV), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || !bytes.Equal(first.CSV, second.CSV) {
		t.Errorf("second run: Cached = %v, equal = %v; want cached identical output", second.Cached, bytes.Equal(first.CSV, second.CSV))
	}
	if second.Stats.InputRows != 3 || second.Stats.OutputRows != 20 {
		t.Errorf("cached stats = %+v", second.Stats)
	}

	opts.Refresh = true
	third, err := r.Expand(ctx, []byte(salesCSV), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Error("Refresh should bypass the cache")
	}

	other, err := r.Expand(ctx, []byte(salesCSV), ExpandOptions{Rows: 20, Seed: 4})
	if err != nil {
		t.Fatal(err)
	}
	if other.Cached {
		t.Error("a different seed should miss the cache")
	}
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		opts ExpandOptions
		code errors.Code
	}{
		{"negative rows", salesCSV, ExpandOptions{Rows: -1}, errors.ErrCodeInvalidInput},
		{"header only", "a,b\n", ExpandOptions{Rows: 5}, errors.ErrCodeInvalidInput},
		{"malformed csv", "a,b\n1\n", ExpandOptions{Rows: 5}, errors.ErrCodeInvalidFormat},
		{"bad options", salesCSV, ExpandOptions{Rows: 5, Synth: &synth.Options{NoiseFraction: -1, SwapProbability: 0.3}}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quietRunner(nil).Expand(context.Background(), []byte(tt.csv), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Expand() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAugment(t *testing.T) {
	workDir := t.TempDir()
	res, err := quietRunner(nil).Augment(context.Background(), imageArchive(t), AugmentOptions{
		Count:   6,
		Seed:    21,
		Workers: 3,
		WorkDir: workDir,
	})
	if err != nil {
		t.Fatalf("Augment() error: %v", err)
	}
	if res.Sources != 2 || res.Count != 6 || res.JobID == "" {
		t.Errorf("result = %+v", res)
	}

	images := readArchive(t, res.Archive)
	if len(images) != 6 {
		t.Fatalf("archive has %d images, want 6", len(images))
	}
	for i := 0; i < 6; i++ {
		img, ok := images[OutputName(i, io.JPEG)]
		if !ok {
			t.Fatalf("missing %s", OutputName(i, io.JPEG))
		}
		size := img.Bounds().Size()
		if size != (image.Point{12, 6}) && size != (image.Point{5, 5}) {
			t.Errorf("%s size = %v, want one of the source sizes", OutputName(i, io.JPEG), size)
		}
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("workspace not cleaned up: %d entries left", len(entries))
	}
}

func TestAugmentPNG(t *testing.T) {
	res, err := quietRunner(nil).Augment(context.Background(), imageArchive(t), AugmentOptions{
		Count:   2,
		Seed:    1,
		Format:  io.PNG,
		WorkDir: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	images := readArchive(t, res.Archive)
	if _, ok := images["img_1.png"]; !ok {
		t.Errorf("archive members = %v, want img_0.png and img_1.png", keys(images))
	}
}

func TestAugmentDeterministicAcrossWorkers(t *testing.T) {
	r := quietRunner(nil)
	data := imageArchive(t)
	a, err := r.Augment(context.Background(), data, AugmentOptions{Count: 8, Seed: 77, Workers: 1, WorkDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Augment(context.Background(), data, AugmentOptions{Count: 8, Seed: 77, Workers: 6, WorkDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Archive, b.Archive) {
		t.Error("same seed should produce identical archives regardless of workers")
	}
	if a.JobID == b.JobID {
		t.Error("each run should get its own job ID")
	}
}

func TestAugmentCache(t *testing.T) {
	c := newMemCache()
	r := quietRunner(c)
	data := imageArchive(t)
	opts := AugmentOptions{Count: 3, Seed: 8, WorkDir: t.TempDir()}

	first, err := r.Augment(context.Background(), data, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Augment(context.Background(), data, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || !second.Cached {
		t.Errorf("Cached = %v, %v; want false, true", first.Cached, second.Cached)
	}
	if !bytes.Equal(first.Archive, second.Archive) {
		t.Error("cached archive differs from the computed one")
	}
	if c.sets != 1 {
		t.Errorf("cache writes = %d, want 1", c.sets)
	}
}

func TestAugmentErrors(t *testing.T) {
	tests := []struct {
		name    string
		archive func(*testing.T) []byte
		opts    AugmentOptions
		code    errors.Code
	}{
		{
			"no images",
			func(t *testing.T) []byte { return archiveOf(t, io.ArchiveFile{Name: "a.txt", Data: []byte("x")}) },
			AugmentOptions{Count: 5},
			errors.ErrCodeInvalidInput,
		},
		{
			"empty archive with zero count",
			func(t *testing.T) []byte { return archiveOf(t) },
			AugmentOptions{Count: 0},
			errors.ErrCodeInvalidInput,
		},
		{
			"negative count",
			imageArchive,
			AugmentOptions{Count: -1},
			errors.ErrCodeInvalidInput,
		},
		{
			"corrupt image",
			func(t *testing.T) []byte { return archiveOf(t, io.ArchiveFile{Name: "bad.png", Data: []byte("nope")}) },
			AugmentOptions{Count: 1},
			errors.ErrCodeInvalidFormat,
		},
		{
			"not a zip",
			func(*testing.T) []byte { return []byte("plain text") },
			AugmentOptions{Count: 1},
			errors.ErrCodeInvalidFormat,
		},
		{
			"unsupported format",
			imageArchive,
			AugmentOptions{Count: 1, Format: "gif"},
			errors.ErrCodeUnsupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.WorkDir = t.TempDir()
			_, err := quietRunner(nil).Augment(context.Background(), tt.archive(t), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Augment() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAugmentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietRunner(nil).Augment(ctx, imageArchive(t), AugmentOptions{Count: 4, Seed: 1, WorkDir: t.TempDir()})
	if err == nil {
		t.Error("Augment() with cancelled context should fail")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnExpandStart(context.Context, int, int) { h.record("expand-start") }
func (h *recordingHooks) OnExpandComplete(context.Context, int, time.Duration, error) {
	h.record("expand-complete")
}
func (h *recordingHooks) OnAugmentStart(context.Context, int, int) { h.record("augment-start") }
func (h *recordingHooks) OnAugmentComplete(context.Context, int, time.Duration, error) {
	h.record("augment-complete")
}

func TestHooksFire(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := quietRunner(nil)
	if _, err := r.Expand(context.Background(), []byte(salesCSV), ExpandOptions{Rows: 4, Seed: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Augment(context.Background(), imageArchive(t), AugmentOptions{Count: 1, Seed: 1, WorkDir: t.TempDir()}); err != nil {
		t.Fatal(err)
	}

	want := []string{"expand-start", "expand-complete", "augment-start", "augment-complete"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

func TestOutputName(t *testing.T) {
	if got := OutputName(12, io.JPEG); got != "img_12.jpg" {
		t.Errorf("OutputName(12, jpeg) = %s", got)
	}
	if got := OutputName(0, io.PNG); got != "img_0.png" {
		t.Errorf("OutputName(0, png) = %s", got)
	}
}

func keys(m map[string]image.Image) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
