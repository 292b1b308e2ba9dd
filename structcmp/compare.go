// compare.go - structured comparator entry point
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package structcmp

import (
	"math"
	"strconv"
	"strings"

	"github.com/opencoff/fcmp"
)

// maxSamplesPerColumn caps the number of mismatch examples recorded
// per column (§4.5).
const maxSamplesPerColumn = 5

// Options controls one structured comparison.
type Options struct {
	KeyColumns       []string
	IgnoreColumns    []string
	NumericTolerance float64
	Spreadsheet      SpreadsheetReader
}

// Compare parses a and b according to their FileEntry delimiter (or,
// for Spreadsheet entries, via Options.Spreadsheet if one was wired
// in) and produces a StructuredResult via composite-key merge-scan
// alignment (§4.5).
func Compare(a, b *fcmp.FileEntry, opt Options) (*fcmp.StructuredResult, error) {
	ta, err := load(a, opt.Spreadsheet)
	if err != nil {
		return nil, &fcmp.Error{Op: "structcmp-read", PathA: a.AbsPath, Err: err}
	}
	tb, err := load(b, opt.Spreadsheet)
	if err != nil {
		return nil, &fcmp.Error{Op: "structcmp-read", PathA: b.AbsPath, Err: err}
	}

	idxA, ok := keyIndices(ta.Header, opt.KeyColumns)
	if !ok {
		return nil, &fcmp.Error{Op: "structcmp-key", PathA: a.AbsPath, Err: errKeyColumnMissing}
	}
	idxB, ok := keyIndices(tb.Header, opt.KeyColumns)
	if !ok {
		return nil, &fcmp.Error{Op: "structcmp-key", PathA: b.AbsPath, Err: errKeyColumnMissing}
	}

	sortedA, sortedB := keySortBothSides(ta.Rows, tb.Rows, idxA, idxB)

	ignore := make(map[string]bool, len(opt.IgnoreColumns))
	for _, c := range opt.IgnoreColumns {
		ignore[strings.ToLower(strings.TrimSpace(c))] = true
	}

	res := &fcmp.StructuredResult{RowsA: len(sortedA), RowsB: len(sortedB)}
	mismatchByCol := make(map[string]*fcmp.FieldMismatch)

	i, j := 0, 0
	for i < len(sortedA) && j < len(sortedB) {
		switch {
		case sortedA[i].key < sortedB[j].key:
			res.OnlyA++
			i++
		case sortedA[i].key > sortedB[j].key:
			res.OnlyB++
			j++
		default:
			res.Common++
			compareRow(sortedA[i].key, ta.Header, tb.Header, sortedA[i].row, sortedB[j].row, opt.NumericTolerance, ignore, mismatchByCol)
			i++
			j++
		}
	}
	res.OnlyA += len(sortedA) - i
	res.OnlyB += len(sortedB) - j

	for _, fm := range mismatchByCol {
		res.FieldMismatches = append(res.FieldMismatches, *fm)
	}

	total := res.Common + res.OnlyA + res.OnlyB
	if total == 0 {
		res.Similarity = 1.0
		res.Identical = true
	} else {
		res.Similarity = float64(res.Common) / float64(total)
		res.Identical = res.OnlyA == 0 && res.OnlyB == 0 && len(res.FieldMismatches) == 0
	}

	return res, nil
}

func load(fe *fcmp.FileEntry, sr SpreadsheetReader) (*Table, error) {
	if fe.Type == fcmp.Spreadsheet {
		if sr == nil {
			return nil, errNoSpreadsheetReader
		}
		return sr.ReadFirstSheet(fe.AbsPath)
	}
	return ParseFile(fe.AbsPath, fe.Delimiter)
}

// compareRow compares one aligned (same-key) row pair cell by cell,
// recording mismatches per column up to the sample cap.
func compareRow(key string, headerA, headerB []string, rowA, rowB []string, tol float64, ignore map[string]bool, out map[string]*fcmp.FieldMismatch) {
	n := len(headerA)
	if len(headerB) < n {
		n = len(headerB)
	}
	for col := 0; col < n; col++ {
		name := headerA[col]
		if ignore[strings.ToLower(strings.TrimSpace(name))] {
			continue
		}
		var va, vb string
		if col < len(rowA) {
			va = rowA[col]
		}
		if col < len(rowB) {
			vb = rowB[col]
		}
		if cellsEqual(va, vb, tol) {
			continue
		}

		fm, ok := out[name]
		if !ok {
			fm = &fcmp.FieldMismatch{Column: name}
			out[name] = fm
		}
		fm.Count++
		if len(fm.Samples) < maxSamplesPerColumn {
			fm.Samples = append(fm.Samples, fcmp.FieldMismatchSample{Key: key, ValueA: va, ValueB: vb})
		}
	}
}

// cellsEqual compares two cell values: exact match after trimming
// surrounding whitespace, falling back to magnitude-relative numeric
// tolerance when both parse as numbers: |a - b| <= tol * max(1, max(|a|,
// |b|)), per §4.5 point 4. NaN is never equal to anything, including
// itself.
func cellsEqual(a, b string, tol float64) bool {
	ta, tb := strings.TrimSpace(a), strings.TrimSpace(b)

	fa, erra := strconv.ParseFloat(ta, 64)
	fb, errb := strconv.ParseFloat(tb, 64)
	if erra == nil && errb == nil {
		if fa != fa || fb != fb { // NaN never equals anything, including itself
			return false
		}
		diff := math.Abs(fa - fb)
		return diff <= tol*math.Max(1, math.Max(math.Abs(fa), math.Abs(fb)))
	}

	return ta == tb
}
