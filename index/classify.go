// classify.go - file-type classification by header inspection
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package index

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/opencoff/fcmp"
)

// headerWindow is the number of bytes read to classify a file, per
// §4.1: "reading a header window of up to 8 KiB".
const headerWindow = 8 << 10

// spreadsheetExts are the extensions recognized as workbook formats
// readable as rows of string cells (§4.1). A matching extension alone
// classifies a file as Spreadsheet; magic-byte sniffing for the zip
// container ("PK\x03\x04") is also applied, so any zip-format file is
// classified as Spreadsheet whatever its extension.
var spreadsheetExts = map[string]bool{
	".xlsx": true,
	".ods":  true,
}

// classifyFile opens path, reads its header window, and returns a
// fully classified (but not yet fingerprinted) FileEntry.
func classifyFile(absPath, relPath string, size int64) (*fcmp.FileEntry, error) {
	fe := &fcmp.FileEntry{
		AbsPath: absPath,
		RelPath: filepath.ToSlash(relPath),
		Size:    size,
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	if spreadsheetExts[ext] {
		fe.Type = fcmp.Spreadsheet
		return fe, nil
	}

	if size == 0 {
		fe.Type = fcmp.Text
		return fe, nil
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, headerWindow)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, err
	}
	buf = buf[:n]

	if isSpreadsheetMagic(buf) {
		fe.Type = fcmp.Spreadsheet
		return fe, nil
	}

	if bytes.IndexByte(buf, 0) >= 0 {
		fe.Type = fcmp.Binary
		return fe, nil
	}

	if !utf8.Valid(buf) {
		fe.Type = fcmp.Unknown
		return fe, nil
	}

	firstLine := firstLineOf(buf)
	if delim, cols, ok := detectDelimited(firstLine); ok {
		fe.Type = fcmp.Structured
		fe.Delimiter = delim
		fe.Columns = cols
		return fe, nil
	}

	fe.Type = fcmp.Text
	return fe, nil
}

// isSpreadsheetMagic detects the zip local-file-header signature used
// by .xlsx/.ods containers.
func isSpreadsheetMagic(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 'P' && buf[1] == 'K' && buf[2] == 0x03 && buf[3] == 0x04
}

func firstLineOf(buf []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(buf))
	sc.Buffer(make([]byte, headerWindow), headerWindow)
	if sc.Scan() {
		return sc.Text()
	}
	return string(buf)
}

// detectDelimited implements §4.1's header sniff: split the first
// decoded line on both comma and tab; if the better split yields at
// least two fields, the file is Structured with that delimiter (ties
// go to comma).
func detectDelimited(line string) (fcmp.Delimiter, []string, bool) {
	commaFields := strings.Split(line, ",")
	tabFields := strings.Split(line, "\t")

	delim := fcmp.Comma
	fields := commaFields
	if len(tabFields) > len(commaFields) {
		delim = fcmp.Tab
		fields = tabFields
	}

	if len(fields) < 2 {
		return 0, nil, false
	}

	cols := make([]string, len(fields))
	for i, c := range fields {
		cols[i] = strings.TrimSpace(strings.Trim(c, "\"'"))
	}
	return delim, cols, true
}
