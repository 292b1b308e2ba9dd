// diff.go - Myers line diff and unified-diff rendering
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package textcmp

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// lineDiff runs Myers' algorithm over two line slices using the
// classic "diff lines as chars" trick: each distinct line is assigned
// a private rune, the rune strings are diffed character-wise (which is
// then equivalent to a line-wise diff), and the result is mapped back
// to lines.
type lineDiffResult struct {
	common     int
	onlyA      int
	onlyB      int
	rendered   string
	truncated  bool
}

func lineDiff(linesA, linesB []string, maxBytes int64) lineDiffResult {
	dmp := diffmatchpatch.New()

	textA, textB, lineArray := dmp.DiffLinesToChars(strings.Join(linesA, "\n"), strings.Join(linesB, "\n"))
	diffs := dmp.DiffMain(textA, textB, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var res lineDiffResult
	var b strings.Builder
	truncated := false

	for _, d := range diffs {
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		if d.Text == "" {
			continue
		}
		n := len(lines)

		switch d.Type {
		case diffmatchpatch.DiffEqual:
			res.common += n
		case diffmatchpatch.DiffInsert:
			res.onlyB += n
		case diffmatchpatch.DiffDelete:
			res.onlyA += n
		}

		if truncated {
			continue
		}
		for _, ln := range lines {
			prefix := "  "
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				prefix = "+ "
			case diffmatchpatch.DiffDelete:
				prefix = "- "
			}
			line := prefix + ln + "\n"
			if maxBytes > 0 && int64(b.Len()+len(line)) > maxBytes {
				truncated = true
				break
			}
			b.WriteString(line)
		}
	}

	res.rendered = b.String()
	res.truncated = truncated
	if truncated {
		res.rendered += fmt.Sprintf("... (diff truncated at %d bytes)\n", maxBytes)
	}
	return res
}
