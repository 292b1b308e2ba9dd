// compare.go - text comparator entry point
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package textcmp

import (
	"os"

	"github.com/grafana/regexp"
	"github.com/opencoff/fcmp"
)

// fallbackSizeThreshold is the line count above which Ratcliff-Obershelp
// and LCS - both O(n^2) - are too costly to run directly; Compare
// substitutes LineDiff instead and reports AlgorithmFallback (§4.4).
const fallbackSizeThreshold = 5000

// smithWatermanFallbackThreshold is Smith-Waterman's own, lower
// fallback line count (§4.4: "smith-waterman falls back to line-diff
// when either side has more than 2,000 lines").
const smithWatermanFallbackThreshold = 2000

var quadraticAlgorithms = map[fcmp.SimilarityAlgorithm]bool{
	fcmp.SmithWaterman:            true,
	fcmp.RatcliffObershelp:        true,
	fcmp.LongestCommonSubsequence: true,
}

// fallbackThreshold returns the line-count ceiling above which algo
// must fall back to LineDiff.
func fallbackThreshold(algo fcmp.SimilarityAlgorithm) int {
	if algo == fcmp.SmithWaterman {
		return smithWatermanFallbackThreshold
	}
	return fallbackSizeThreshold
}

// Options controls one text comparison.
type Options struct {
	Normalization fcmp.TextNormalization
	Algorithm     fcmp.SimilarityAlgorithm
	IgnoreRegex   *regexp.Regexp
	MaxDiffBytes  int64
}

// Compare reads pathA and pathB fully, normalizes their lines, and
// scores them with the configured algorithm, producing a TextResult.
func Compare(pathA, pathB string, opt Options) (*fcmp.TextResult, error) {
	contentA, err := os.ReadFile(pathA)
	if err != nil {
		return nil, &fcmp.Error{Op: "textcmp-read", PathA: pathA, Err: err}
	}
	contentB, err := os.ReadFile(pathB)
	if err != nil {
		return nil, &fcmp.Error{Op: "textcmp-read", PathA: pathB, Err: err}
	}

	linesA := splitLines(contentA, opt.Normalization, opt.IgnoreRegex)
	linesB := splitLines(contentB, opt.Normalization, opt.IgnoreRegex)

	algo := opt.Algorithm
	fallback := false
	if quadraticAlgorithms[algo] {
		threshold := fallbackThreshold(algo)
		if len(linesA) > threshold || len(linesB) > threshold {
			algo = fcmp.LineDiff
			fallback = true
		}
	}

	sim, err := score(algo, linesA, linesB)
	if err != nil {
		return nil, &fcmp.Error{Op: "textcmp-score", PathA: pathA, PathB: pathB, Err: err}
	}

	d := lineDiff(linesA, linesB, opt.MaxDiffBytes)

	identical := equalLines(linesA, linesB)
	if identical {
		sim = 1.0
	}

	return &fcmp.TextResult{
		LinesA:            len(linesA),
		LinesB:            len(linesB),
		Common:            d.common,
		OnlyA:             d.onlyA,
		OnlyB:             d.onlyB,
		Similarity:        sim,
		Identical:         identical,
		Algorithm:         algo,
		AlgorithmFallback: fallback,
		DetailedDiff:      d.rendered,
		DiffTruncated:     d.truncated,
	}, nil
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
