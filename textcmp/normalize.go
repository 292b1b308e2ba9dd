// normalize.go - line splitting, normalization and regex elision
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

// Package textcmp implements spec §4.4: line-level diffing and the
// named similarity scorers used to compare Text files.
package textcmp

import (
	"strings"

	"github.com/grafana/regexp"
	"github.com/opencoff/fcmp"
)

// splitLines splits raw content into lines on '\n', applying
// text_normalization (including IgnoreEOL's CRLF/LF folding, via
// fcmp.NormalizeLine) and an optional ignore_regex elision pass (§4.4).
func splitLines(content []byte, norm fcmp.TextNormalization, ignoreRe *regexp.Regexp) []string {
	raw := strings.Split(string(content), "\n")
	// A trailing newline produces a spurious empty final element.
	if len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}

	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if ignoreRe != nil {
			l = ignoreRe.ReplaceAllString(l, "")
		}
		nl := fcmp.NormalizeLine(l, norm)
		if nl == "" && norm.Has(fcmp.SkipEmptyLines) {
			continue
		}
		out = append(out, nl)
	}
	return out
}
