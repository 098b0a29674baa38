package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

type csvOptions struct {
	Delimiter string   `mapstructure:"delimiter"`
	Header    *bool    `mapstructure:"header"`
	Columns   []string `mapstructure:"columns"`
	SkipRows  int      `mapstructure:"skip_rows"`
	Comment   string   `mapstructure:"comment"`
}

func readCSV(path string, kwargs map[string]any) (*frame.Dataset, error) {
	return readDelimited(path, kwargs, ',')
}

func readTSV(path string, kwargs map[string]any) (*frame.Dataset, error) {
	return readDelimited(path, kwargs, '\t')
}

func readDelimited(path string, kwargs map[string]any, sep rune) (*frame.Dataset, error) {
	var opts csvOptions
	if err := decodeKwargs(kwargs, &opts); err != nil {
		return nil, err
	}
	if opts.Delimiter != "" {
		r := []rune(opts.Delimiter)
		if len(r) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", opts.Delimiter)
		}
		sep = r[0]
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, readError(path, err)
	}
	defer f.Close()

	t, err := parseDelimited(f, sep, opts)
	if err != nil {
		return nil, readError(path, err)
	}
	return frame.FromTable("", t), nil
}

func parseDelimited(r io.Reader, sep rune, opts csvOptions) (*frame.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	if opts.Comment != "" {
		cr.Comment = []rune(opts.Comment)[0]
	}

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := cr.Read(); err != nil {
			return nil, fmt.Errorf("skipping row %d: %w", i+1, err)
		}
	}

	header := opts.Header == nil || *opts.Header
	var columns []string
	if header {
		rec, err := cr.Read()
		if err == io.EOF {
			return frame.NewTable(opts.Columns...), nil
		}
		if err != nil {
			return nil, err
		}
		columns = make([]string, len(rec))
		for i, c := range rec {
			columns[i] = strings.TrimSpace(c)
		}
		if len(opts.Columns) > 0 {
			if len(opts.Columns) != len(columns) {
				return nil, fmt.Errorf("columns override has %d names, file has %d columns", len(opts.Columns), len(columns))
			}
			columns = opts.Columns
		}
	} else {
		if len(opts.Columns) == 0 {
			return nil, fmt.Errorf("header: false requires columns")
		}
		columns = opts.Columns
		cr.FieldsPerRecord = len(columns)
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}

	t := frame.NewTable(columns...)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			row[i] = frame.Infer(cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
