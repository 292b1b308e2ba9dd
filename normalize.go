// normalize.go - text normalization shared by fingerprinting and text comparison
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package fcmp

import "strings"

// NormalizeLine applies norm to a single line of text, per §4.4's
// normalization pipeline: callers split on '\n' before calling this, so
// a line from a CRLF source still carries a trailing '\r' unless
// IgnoreEOL is set, in which case that trailing '\r' (and any stray
// '\n') is folded away so CRLF and LF inputs compare equal.
func NormalizeLine(line string, norm TextNormalization) string {
	if norm.Has(IgnoreEOL) {
		line = strings.TrimRight(line, "\r\n")
	}

	if norm.Has(IgnoreAllWhitespace) {
		line = stripAllWhitespace(line)
	} else if norm.Has(IgnoreTrailingWhitespace) {
		line = strings.TrimRight(line, " \t")
	}

	if norm.Has(IgnoreCase) {
		line = strings.ToLower(line)
	}

	return line
}

func stripAllWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
