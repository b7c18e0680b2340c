package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/io"
	"github.com/matzehuels/amplify/pkg/pipeline"
)

// expandOpts holds the flags of the expand command.
type expandOpts struct {
	rows      int
	seed      uint64
	output    string
	delimiter string
	noise     float64
	swap      float64
	refresh   bool
}

// expandCommand creates the expand command.
func (c *CLI) expandCommand() *cobra.Command {
	opts := expandOpts{delimiter: ","}

	cmd := &cobra.Command{
		Use:   "expand <file.csv>",
		Short: "Grow a CSV dataset with synthetic rows",
		Long: `Expand appends synthetic rows to a CSV file until it holds the requested
number of rows. Each synthetic row starts from a random original row;
numeric cells receive Gaussian noise scaled to the column's standard
deviation and categorical cells are occasionally swapped for another
value from the same column.`,
		Example: `  amplify expand data.csv --rows 1000
  amplify expand data.csv -n 500 --seed 42 -o data_big.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExpand(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.rows, "rows", "n", 0, "target row count")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks a fresh one)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <name>_expanded.csv)")
	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", opts.delimiter, "field delimiter")
	cmd.Flags().Float64Var(&opts.noise, "noise", 0, "noise as a fraction of each column's standard deviation")
	cmd.Flags().Float64Var(&opts.swap, "swap", 0, "probability of swapping a categorical cell")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	_ = cmd.MarkFlagRequired("rows")

	return cmd
}

func (c *CLI) runExpand(cmd *cobra.Command, path string, opts expandOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	comma, err := parseDelimiter(opts.delimiter)
	if err != nil {
		return err
	}

	data, err := readInput(path)
	if err != nil {
		return err
	}

	so := c.Config.SynthOptions()
	if cmd.Flags().Changed("noise") {
		so.NoiseFraction = opts.noise
	}
	if cmd.Flags().Changed("swap") {
		so.SwapProbability = opts.swap
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	res, err := runner.Expand(ctx, data, pipeline.ExpandOptions{
		Rows:    opts.rows,
		Seed:    opts.seed,
		Synth:   &so,
		CSV:     io.CSVOptions{Comma: comma},
		Refresh: opts.refresh,
	})
	if err != nil {
		return err
	}
	prog.done("Expanded " + filepath.Base(path))

	out := opts.output
	if out == "" {
		out = expandedName(path)
	}
	if err := writeOutput(ctx, out, res.CSV); err != nil {
		return err
	}

	printSuccess("Expanded %d → %d rows", res.Stats.InputRows, res.Stats.OutputRows)
	printStats(res.Cached, fmt.Sprintf("%d columns", res.Table.Width()), fmt.Sprintf("seed %d", res.Seed))
	printFile(out)
	printNextStep("Inspect", "amplify inspect "+out)
	return nil
}

// expandedName derives "<base>_expanded.csv" in the working directory.
func expandedName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_expanded.csv"
}

// parseDelimiter accepts a single character, or "\t" / "tab".
func parseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) || r == '"' || r == '\r' || r == '\n' {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "delimiter must be a single character, got %q", s)
	}
	return r, nil
}

// readInput reads a whole input file, reporting a missing file as FILE_NOT_FOUND.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, creating parent directories as needed.
func writeOutput(ctx context.Context, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	loggerFromContext(ctx).Debug("wrote output", "path", path, "bytes", len(data))
	return nil
}
