// errors.go - structured-comparison error sentinels
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package structcmp

import "errors"

// errKeyColumnMissing is wrapped in an fcmp.Error with ErrSchema
// semantics by the compare package when a configured key column is
// absent from a file's header.
var errKeyColumnMissing = errors.New("structcmp: configured key column not found in header")

// errNoSpreadsheetReader is returned when a Spreadsheet entry reaches
// Compare without a SpreadsheetReader wired in.
var errNoSpreadsheetReader = errors.New("structcmp: no SpreadsheetReader configured for spreadsheet entry")
