package cli

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/amplify/pkg/io"
	tbl "github.com/matzehuels/amplify/pkg/table"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	delimiter := ","

	cmd := &cobra.Command{
		Use:   "inspect <file.csv>",
		Short: "Show how each CSV column is classified",
		Long: `Inspect reads a CSV file and prints, for each column, whether expand will
treat it as numeric (noise is added) or categorical (values are swapped),
together with basic statistics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], delimiter)
		},
	}

	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", delimiter, "field delimiter")
	return cmd
}

func (c *CLI) runInspect(path, delimiter string) error {
	comma, err := parseDelimiter(delimiter)
	if err != nil {
		return err
	}
	data, err := readInput(path)
	if err != nil {
		return err
	}
	t, err := io.ReadCSV(bytes.NewReader(data), io.CSVOptions{Comma: comma})
	if err != nil {
		return err
	}

	schema := tbl.Classify(t)
	fmt.Println(StyleTitle.Render(filepath.Base(path)))
	printKeyValue("Rows", strconv.Itoa(t.Len()))
	printKeyValue("Numeric", strconv.Itoa(len(schema.Numeric())))
	printKeyValue("Categorical", strconv.Itoa(len(schema.Categorical())))
	fmt.Println()
	fmt.Println(renderProfile(tbl.Profile(t)))
	return nil
}

// renderProfile formats column profiles as a bordered table.
func renderProfile(profiles []tbl.ColumnProfile) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			p.Name,
			p.Kind.String(),
			strconv.Itoa(p.Present) + "/" + strconv.Itoa(p.Count),
			strconv.Itoa(p.Distinct),
			formatStat(p.Mean),
			formatStat(p.StdDev),
			formatStat(p.Min),
			formatStat(p.Max),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Column", "Kind", "Present", "Distinct", "Mean", "Std", "Min", "Max").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col >= 4 {
				return cell.Inherit(StyleNumber).Align(lipgloss.Right)
			}
			if col == 1 && row < len(profiles) && profiles[row].Kind == tbl.Categorical {
				return cell.Foreground(colorYellow)
			}
			return cell
		})
	return t.Render()
}

func formatStat(f float64) string {
	if math.IsNaN(f) {
		return "-"
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}
