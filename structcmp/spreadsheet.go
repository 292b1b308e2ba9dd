// spreadsheet.go - pluggable spreadsheet row source
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package structcmp

// SpreadsheetReader loads the first sheet of a workbook as a Table.
// No spreadsheet-reading library appears anywhere in the retrieval
// pack, so there is no default implementation here; a caller that
// needs Spreadsheet support wires one in (e.g. backed by
// qax-os/excelize or similar) and passes it to Compare via
// Options.Spreadsheet. Without one, Compare returns an error for a
// Spreadsheet entry instead of parsing it.
type SpreadsheetReader interface {
	ReadFirstSheet(path string) (*Table, error)
}
