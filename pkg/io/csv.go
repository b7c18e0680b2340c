package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/table"
)

// CSVOptions controls CSV decoding.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// LazyQuotes allows a quote to appear in an unquoted field.
	LazyQuotes bool
}

// ReadCSV decodes a CSV document with a header row into a table.
// Malformed input fails with errors.ErrCodeInvalidFormat.
func ReadCSV(r io.Reader, opts CSVOptions) (*table.Table, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.LazyQuotes = opts.LazyQuotes

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "csv has no header row")
	}

	header := records[0]
	if len(header) == 1 && strings.TrimSpace(header[0]) == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "csv header is empty")
	}
	body := records[1:]

	numeric := make([]bool, len(header))
	for c := range header {
		numeric[c] = isNumericColumn(body, c)
	}

	rows := make([]table.Row, len(body))
	for i, rec := range body {
		cells := make([]table.Value, len(rec))
		for c, raw := range rec {
			cells[c] = decodeCell(raw, numeric[c])
		}
		rows[i] = table.NewRow(cells...)
	}

	t, err := table.New(header, rows)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "csv table")
	}
	return t, nil
}

// WriteCSV encodes t with a header row.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, t.Width())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for c := range rec {
			rec[c] = row.Cell(c).String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func isNumericColumn(body [][]string, c int) bool {
	seen := false
	for _, rec := range body {
		s := strings.TrimSpace(rec[c])
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

func decodeCell(raw string, numeric bool) table.Value {
	if !numeric {
		return table.Text(raw)
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return table.Number(math.NaN())
	}
	f, _ := strconv.ParseFloat(s, 64)
	return table.Number(f)
}
