// textcmp_test.go - tests for text comparison
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package textcmp

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencoff/fcmp"
)

func writeTmp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %s", err)
	}
	return p
}

func TestCompareIdentical(t *testing.T) {
	a := writeTmp(t, "line one\nline two\nline three\n")
	b := writeTmp(t, "line one\nline two\nline three\n")

	res, err := Compare(a, b, Options{Algorithm: fcmp.LineDiff})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.Identical || res.Similarity != 1.0 {
		t.Fatalf("expected identical files: %+v", res)
	}
}

func TestCompareDifferent(t *testing.T) {
	a := writeTmp(t, "line one\nline two\nline three\n")
	b := writeTmp(t, "line one\nCHANGED\nline three\n")

	res, err := Compare(a, b, Options{Algorithm: fcmp.LineDiff})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if res.Identical {
		t.Fatalf("expected non-identical result")
	}
	if res.Common != 2 {
		t.Fatalf("expected 2 common lines, got %d", res.Common)
	}
	if res.OnlyA != 1 || res.OnlyB != 1 {
		t.Fatalf("expected 1 changed line each side, got onlyA=%d onlyB=%d", res.OnlyA, res.OnlyB)
	}
}

func TestCompareIgnoreCase(t *testing.T) {
	a := writeTmp(t, "Hello World\n")
	b := writeTmp(t, "hello world\n")

	res, err := Compare(a, b, Options{Algorithm: fcmp.LineDiff, Normalization: fcmp.IgnoreCase})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.Identical {
		t.Fatalf("expected case-insensitive match: %+v", res)
	}
}

func TestCompareIgnoreTrailingWhitespace(t *testing.T) {
	a := writeTmp(t, "value  \n")
	b := writeTmp(t, "value\n")

	res, err := Compare(a, b, Options{Algorithm: fcmp.LineDiff, Normalization: fcmp.IgnoreTrailingWhitespace})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.Identical {
		t.Fatalf("expected trailing-whitespace-insensitive match: %+v", res)
	}
}

func TestCompareCRLFVsLFDiffersWithoutIgnoreEOL(t *testing.T) {
	a := writeTmp(t, "line one\r\nline two\r\n")
	b := writeTmp(t, "line one\nline two\n")

	res, err := Compare(a, b, Options{Algorithm: fcmp.LineDiff})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if res.Identical {
		t.Fatalf("expected CRLF vs LF to differ without IgnoreEOL")
	}
}

func TestCompareCRLFVsLFMatchesWithIgnoreEOL(t *testing.T) {
	a := writeTmp(t, "line one\r\nline two\r\n")
	b := writeTmp(t, "line one\nline two\n")

	res, err := Compare(a, b, Options{Algorithm: fcmp.LineDiff, Normalization: fcmp.IgnoreEOL})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.Identical {
		t.Fatalf("expected CRLF vs LF to match with IgnoreEOL: %+v", res)
	}
}

func TestAllAlgorithmsScoreIdenticalAsOne(t *testing.T) {
	a := writeTmp(t, "alpha beta gamma\ndelta epsilon zeta\n")
	b := writeTmp(t, "alpha beta gamma\ndelta epsilon zeta\n")

	algos := []fcmp.SimilarityAlgorithm{
		fcmp.LineDiff, fcmp.HammingLines, fcmp.LongestCommonSubsequence,
		fcmp.JaccardTokens, fcmp.SorensenDiceBigrams, fcmp.CosineTermFreq,
		fcmp.TFIDFCosine, fcmp.RatcliffObershelp, fcmp.NgramTrigram,
		fcmp.Levenshtein, fcmp.DamerauLevenshtein, fcmp.SmithWaterman, fcmp.JaroWinkler,
	}
	for _, algo := range algos {
		res, err := Compare(a, b, Options{Algorithm: algo})
		if err != nil {
			t.Fatalf("algo %d: %s", algo, err)
		}
		if !res.Identical {
			t.Fatalf("algo %d: expected Identical=true for byte-identical files", algo)
		}

		lines := []string{"alpha beta gamma", "delta epsilon zeta"}
		sim, err := score(algo, lines, lines)
		if err != nil {
			t.Fatalf("algo %d: score: %s", algo, err)
		}
		if math.Abs(sim-1.0) > 1e-9 {
			t.Fatalf("algo %d: expected a score of 1.0 for identical lines, got %v", algo, sim)
		}
	}
}

func TestCompareAlgorithmFallbackOnLargeInput(t *testing.T) {
	var big string
	for i := 0; i < fallbackSizeThreshold+10; i++ {
		big += "a line of text\n"
	}
	a := writeTmp(t, big)
	b := writeTmp(t, big)

	res, err := Compare(a, b, Options{Algorithm: fcmp.LongestCommonSubsequence})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.AlgorithmFallback {
		t.Fatalf("expected AlgorithmFallback for oversized quadratic-algorithm input")
	}
	if res.Algorithm != fcmp.LineDiff {
		t.Fatalf("expected fallback algorithm to be LineDiff, got %d", res.Algorithm)
	}
}

func TestCompareSmithWatermanFallsBackAtItsOwnLowerThreshold(t *testing.T) {
	var big string
	for i := 0; i < smithWatermanFallbackThreshold+10; i++ {
		big += "a line of text\n"
	}
	a := writeTmp(t, big)
	b := writeTmp(t, big)

	res, err := Compare(a, b, Options{Algorithm: fcmp.SmithWaterman})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.AlgorithmFallback {
		t.Fatalf("expected AlgorithmFallback at smithWatermanFallbackThreshold, which is lower than fallbackSizeThreshold")
	}
	if res.Algorithm != fcmp.LineDiff {
		t.Fatalf("expected fallback algorithm to be LineDiff, got %d", res.Algorithm)
	}
}

func TestCompareSmithWatermanRunsDirectlyBelowItsThreshold(t *testing.T) {
	var big string
	for i := 0; i < smithWatermanFallbackThreshold-10; i++ {
		big += "a line of text\n"
	}
	a := writeTmp(t, big)
	b := writeTmp(t, big)

	res, err := Compare(a, b, Options{Algorithm: fcmp.SmithWaterman})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if res.AlgorithmFallback {
		t.Fatalf("did not expect AlgorithmFallback below smithWatermanFallbackThreshold")
	}
	if res.Algorithm != fcmp.SmithWaterman {
		t.Fatalf("expected algorithm to remain SmithWaterman, got %d", res.Algorithm)
	}
}

func TestCompareDiffTruncation(t *testing.T) {
	var big string
	for i := 0; i < 1000; i++ {
		big += "line number content here to pad things out\n"
	}
	a := writeTmp(t, big)
	b := writeTmp(t, big+"extra trailing line\n")

	res, err := Compare(a, b, Options{Algorithm: fcmp.LineDiff, MaxDiffBytes: 100})
	if err != nil {
		t.Fatalf("compare: %s", err)
	}
	if !res.DiffTruncated {
		t.Fatalf("expected diff truncation with a tiny max_diff_bytes cap")
	}
}
