// structcmp_test.go - tests for structured comparison
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package structcmp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opencoff/fcmp"
)

func writeCSV(t *testing.T, content string) *fcmp.FileEntry {
	t.Helper()
	p := filepath.Join(t.TempDir(), "t.csv")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %s", err)
	}
	return &fcmp.FileEntry{AbsPath: p, RelPath: "t.csv", Type: fcmp.Structured, Delimiter: fcmp.Comma}
}

func TestCompareIdenticalReordered(t *testing.T) {
	a := writeCSV(t, "id,name,amount\n1,alice,10\n2,bob,20\n")
	b := writeCSV(t, "id,name,amount\n2,bob,20\n1,alice,10\n")

	res, err := Compare(a, b, Options{})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.Identical {
		t.Fatalf("expected identical after key-based realignment: %+v", res)
	}
	if res.Common != 2 {
		t.Fatalf("expected 2 common rows, got %d", res.Common)
	}
}

func TestCompareNumericToleranceWithinBounds(t *testing.T) {
	a := writeCSV(t, "id,amount\n1,10.001\n")
	b := writeCSV(t, "id,amount\n1,10.002\n")

	res, err := Compare(a, b, Options{NumericTolerance: 0.01})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.Identical {
		t.Fatalf("expected numeric-tolerance match: %+v", res)
	}
}

func TestCompareNumericToleranceExceeded(t *testing.T) {
	a := writeCSV(t, "id,amount\n1,10.0\n")
	b := writeCSV(t, "id,amount\n1,10.5\n")

	res, err := Compare(a, b, Options{NumericTolerance: 0.01})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if res.Identical {
		t.Fatalf("expected mismatch beyond tolerance")
	}
	if len(res.FieldMismatches) != 1 || res.FieldMismatches[0].Column != "amount" {
		t.Fatalf("expected 1 mismatch on 'amount': %+v", res.FieldMismatches)
	}
}

func TestCompareOnlyAOnlyB(t *testing.T) {
	a := writeCSV(t, "id,name\n1,alice\n2,bob\n")
	b := writeCSV(t, "id,name\n2,bob\n3,carol\n")

	res, err := Compare(a, b, Options{})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if res.OnlyA != 1 || res.OnlyB != 1 || res.Common != 1 {
		t.Fatalf("unexpected alignment: %+v", res)
	}
}

func TestCompareIgnoreColumns(t *testing.T) {
	a := writeCSV(t, "id,name,updated_at\n1,alice,2024-01-01\n")
	b := writeCSV(t, "id,name,updated_at\n1,alice,2024-06-01\n")

	res, err := Compare(a, b, Options{IgnoreColumns: []string{"updated_at"}})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.Identical {
		t.Fatalf("expected ignored column to produce identical result: %+v", res)
	}
}

func TestCompareExplicitKeyColumns(t *testing.T) {
	a := writeCSV(t, "sku,region,qty\nA1,east,5\nA1,west,9\n")
	b := writeCSV(t, "sku,region,qty\nA1,west,9\nA1,east,5\n")

	res, err := Compare(a, b, Options{KeyColumns: []string{"sku", "region"}})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.Identical {
		t.Fatalf("expected composite-key match: %+v", res)
	}
}

func TestCompareMissingKeyColumnErrors(t *testing.T) {
	a := writeCSV(t, "id,name\n1,alice\n")
	b := writeCSV(t, "id,name\n1,alice\n")

	_, err := Compare(a, b, Options{KeyColumns: []string{"does_not_exist"}})
	if err == nil {
		t.Fatalf("expected an error for a missing key column")
	}
}

func TestCompareSpreadsheetWithoutReaderErrors(t *testing.T) {
	a := &fcmp.FileEntry{AbsPath: "a.xlsx", RelPath: "a.xlsx", Type: fcmp.Spreadsheet}
	b := &fcmp.FileEntry{AbsPath: "b.xlsx", RelPath: "b.xlsx", Type: fcmp.Spreadsheet}

	_, err := Compare(a, b, Options{})
	if err == nil {
		t.Fatalf("expected an error when no SpreadsheetReader is configured")
	}
}

func TestCellsEqualNaNNeverEqual(t *testing.T) {
	if cellsEqual("NaN", "NaN", 1.0) {
		t.Fatalf("NaN must never compare equal, even to itself")
	}
}
