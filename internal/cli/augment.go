package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/amplify/pkg/io"
	"github.com/matzehuels/amplify/pkg/pipeline"
)

// augmentOpts holds the flags of the augment command.
type augmentOpts struct {
	count   int
	seed    uint64
	output  string
	format  string
	quality int
	workers int
	refresh bool
}

// augmentCommand creates the augment command.
func (c *CLI) augmentCommand() *cobra.Command {
	var opts augmentOpts

	cmd := &cobra.Command{
		Use:   "augment <images.zip>",
		Short: "Generate augmented copies of the images in a zip archive",
		Long: `Augment extracts the images from a zip archive and writes a new archive
with the requested number of images. Each output image is a randomly chosen
source image, possibly rotated by up to 15 degrees and mirrored, with its
brightness and contrast scaled by a random factor.`,
		Example: `  amplify augment photos.zip --count 200
  amplify augment photos.zip -n 50 --seed 7 --format png -o out.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAugment(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "number of images to generate")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks a fresh one)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output archive (default augmented_images_<job>.zip)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output image format: jpeg or png")
	cmd.Flags().IntVar(&opts.quality, "quality", 0, "JPEG quality (1-100)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "parallel workers (0 uses all CPUs)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	_ = cmd.MarkFlagRequired("count")

	return cmd
}

func (c *CLI) runAugment(cmd *cobra.Command, path string, opts augmentOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := c.Config.Augment

	format, quality, workers := cfg.Format, cfg.Quality, cfg.Workers
	if cmd.Flags().Changed("format") {
		format = opts.format
	}
	if cmd.Flags().Changed("quality") {
		quality = opts.quality
	}
	if cmd.Flags().Changed("workers") {
		workers = opts.workers
	}
	f, err := io.ParseFormat(format)
	if err != nil {
		return err
	}
	params, err := c.Config.AugmentParams()
	if err != nil {
		return err
	}

	data, err := readInput(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if !c.verbose {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Augmenting %s into %d images...", filepath.Base(path), opts.count))
		spinner.Start()
	}
	res, err := runner.Augment(ctx, data, pipeline.AugmentOptions{
		Count:   opts.count,
		Seed:    opts.seed,
		Params:  &params,
		Workers: workers,
		Format:  f,
		Quality: quality,
		WorkDir: cfg.WorkDir,
		Refresh: opts.refresh,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	logger.Debug("augment timings",
		"decode", res.Stats.DecodeTime.Round(time.Millisecond),
		"augment", res.Stats.AugmentTime.Round(time.Millisecond),
		"encode", res.Stats.EncodeTime.Round(time.Millisecond))

	out := opts.output
	if out == "" {
		out = "augmented_images_" + res.JobID + ".zip"
	}
	if err := writeOutput(ctx, out, res.Archive); err != nil {
		return err
	}

	printSuccess("Generated %d images from %d sources", res.Count, res.Sources)
	printStats(res.Cached, string(f), fmt.Sprintf("seed %d", res.Seed), res.Stats.Duration.Round(time.Millisecond).String())
	printFile(out)
	return nil
}
