// schema.go - schema signature for Structured/Spreadsheet files
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package fingerprint

import (
	"strings"

	"github.com/opencoff/fcmp"
	"golang.org/x/crypto/blake2b"
)

// SchemaSignature digests a normalized column-header list: each header
// is trimmed and casefolded before joining, so "ID, Name" and
// "id,name" produce the same signature (§4.2).
func SchemaSignature(columns []string) fcmp.SchemaHash {
	norm := make([]string, len(columns))
	for i, c := range columns {
		norm[i] = strings.ToLower(strings.TrimSpace(c))
	}
	h := blake2b.Sum256([]byte(strings.Join(norm, "\x1f")))
	return fcmp.SchemaHash(h)
}
