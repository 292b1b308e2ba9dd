// algorithms.go - the named similarity scorers of §4.4
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package textcmp

import (
	"math"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"
	"github.com/hbollon/go-edlib"
	"github.com/opencoff/fcmp"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// score computes a [0, 1] similarity between linesA and linesB using
// the named algorithm. Callers are responsible for the size-based
// fallback substitution described in §4.4.
//
// Per §4.4, "all scorers operate on the line vectors (not concatenated
// strings) to bound peak memory." SorensenDiceBigrams, NgramTrigram and
// JaroWinkler are genuinely character-level measures (bigram/q-gram/
// edit-distance over runes) and join their lines into one string by
// design. LCS, Levenshtein, Damerau-Levenshtein, Smith-Waterman and
// Ratcliff-Obershelp instead run over linesToChars-encoded strings: the
// same "diff lines as chars" trick diff.go already uses for the Myers
// line diff, where each distinct line is assigned a single private rune
// so a byte/rune-level algorithm run over the encoding is equivalent to
// a line-level algorithm run over the original lines - and the DP
// tables those algorithms build are sized by line count, not character
// count.
func score(algo fcmp.SimilarityAlgorithm, linesA, linesB []string) (float64, error) {
	switch algo {
	case fcmp.LineDiff:
		return lineDiffSimilarity(linesA, linesB), nil
	case fcmp.HammingLines:
		return hammingLinesSimilarity(linesA, linesB), nil
	case fcmp.LongestCommonSubsequence:
		return lcsSimilarity(linesA, linesB)
	case fcmp.JaccardTokens:
		return jaccardTokens(linesA, linesB), nil
	case fcmp.SorensenDiceBigrams:
		textA, textB := strings.Join(linesA, "\n"), strings.Join(linesB, "\n")
		return sorensenDiceSimilarity(textA, textB)
	case fcmp.CosineTermFreq:
		return cosineTermFreq(linesA, linesB), nil
	case fcmp.TFIDFCosine:
		return tfidfCosine(linesA, linesB), nil
	case fcmp.RatcliffObershelp:
		return ratcliffObershelp(linesA, linesB), nil
	case fcmp.NgramTrigram:
		textA, textB := strings.Join(linesA, "\n"), strings.Join(linesB, "\n")
		return qgramSimilarity(textA, textB)
	case fcmp.Levenshtein:
		return levenshteinSimilarity(linesA, linesB)
	case fcmp.DamerauLevenshtein:
		return damerauLevenshteinSimilarity(linesA, linesB)
	case fcmp.SmithWaterman:
		return smithWaterman(linesA, linesB), nil
	case fcmp.JaroWinkler:
		textA, textB := strings.Join(linesA, "\n"), strings.Join(linesB, "\n")
		return jaroWinklerSimilarity(textA, textB)
	default:
		return lineDiffSimilarity(linesA, linesB), nil
	}
}

// linesToChars encodes linesA/linesB so that each distinct line becomes
// one private-use rune, per diff.go's lineDiff.
func linesToChars(linesA, linesB []string) (string, string) {
	dmp := diffmatchpatch.New()
	encA, encB, _ := dmp.DiffLinesToChars(strings.Join(linesA, "\n"), strings.Join(linesB, "\n"))
	return encA, encB
}

// lineDiffSimilarity is the fraction of lines held in common by the
// Myers diff, over the larger side's line count.
func lineDiffSimilarity(linesA, linesB []string) float64 {
	d := lineDiff(linesA, linesB, 0)
	total := len(linesA)
	if len(linesB) > total {
		total = len(linesB)
	}
	if total == 0 {
		return 1.0
	}
	return float64(d.common) / float64(total)
}

// hammingLinesSimilarity compares corresponding lines positionally:
// the fraction of aligned line pairs that are identical. Files with
// different line counts are scored over the longer length (extra
// lines on either side always count as mismatches).
func hammingLinesSimilarity(linesA, linesB []string) float64 {
	n := len(linesA)
	if len(linesB) > n {
		n = len(linesB)
	}
	if n == 0 {
		return 1.0
	}
	match := 0
	for i := 0; i < n; i++ {
		var a, b string
		if i < len(linesA) {
			a = linesA[i]
		}
		if i < len(linesB) {
			b = linesB[i]
		}
		if a == b {
			match++
		}
	}
	return float64(match) / float64(n)
}

func lcsSimilarity(linesA, linesB []string) (float64, error) {
	if len(linesA) == 0 && len(linesB) == 0 {
		return 1.0, nil
	}
	encA, encB := linesToChars(linesA, linesB)
	n := edlib.LCS(encA, encB)
	maxLen := len(linesA)
	if len(linesB) > maxLen {
		maxLen = len(linesB)
	}
	if maxLen == 0 {
		return 1.0, nil
	}
	return float64(n) / float64(maxLen), nil
}

// jaccardTokens computes the Jaccard index over the set of distinct
// lines on each side, using RoaringBitmap set algebra over
// xxhash-derived 32-bit line identifiers.
func jaccardTokens(linesA, linesB []string) float64 {
	ba, bb := bitmapOfLines(linesA), bitmapOfLines(linesB)
	union := roaring.Or(ba, bb)
	if union.IsEmpty() {
		return 1.0
	}
	inter := roaring.And(ba, bb)
	return float64(inter.GetCardinality()) / float64(union.GetCardinality())
}

func bitmapOfLines(lines []string) *roaring.Bitmap {
	bm := roaring.New()
	for _, l := range lines {
		bm.Add(uint32(xxhash.Sum64String(l)))
	}
	return bm
}

func sorensenDiceSimilarity(a, b string) (float64, error) {
	if a == "" && b == "" {
		return 1.0, nil
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.SorensenDice)
	return float64(score), err
}

// cosineTermFreq computes cosine similarity between the two sides'
// word-frequency vectors.
func cosineTermFreq(linesA, linesB []string) float64 {
	fa := termFreq(linesA)
	fb := termFreq(linesB)
	return cosineOf(fa, fb)
}

func termFreq(lines []string) map[string]int {
	freq := make(map[string]int)
	for _, l := range lines {
		for _, tok := range strings.Fields(l) {
			freq[tok]++
		}
	}
	return freq
}

func cosineOf(fa, fb map[string]int) float64 {
	if len(fa) == 0 && len(fb) == 0 {
		return 1.0
	}
	var dot, magA, magB float64
	for tok, ca := range fa {
		magA += float64(ca) * float64(ca)
		if cb, ok := fb[tok]; ok {
			dot += float64(ca) * float64(cb)
		}
	}
	for _, cb := range fb {
		magB += float64(cb) * float64(cb)
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// tfidfCosine weights each side's term frequency vector by inverse
// document frequency across the two-document corpus {A, B} before
// taking the cosine: a term present in both sides gets idf = log(2/2)
// = 0 and drops out entirely, so only terms unique to one side (idf =
// log(2/1)) drive the score.
func tfidfCosine(linesA, linesB []string) float64 {
	fa := termFreq(linesA)
	fb := termFreq(linesB)

	vocab := make(map[string]bool, len(fa)+len(fb))
	for t := range fa {
		vocab[t] = true
	}
	for t := range fb {
		vocab[t] = true
	}

	wa := make(map[string]float64, len(fa))
	wb := make(map[string]float64, len(fb))
	for t := range vocab {
		df := 0
		if fa[t] > 0 {
			df++
		}
		if fb[t] > 0 {
			df++
		}
		idf := math.Log(2.0 / float64(df))
		if idf == 0 {
			continue
		}
		wa[t] = float64(fa[t]) * idf
		wb[t] = float64(fb[t]) * idf
	}
	return weightedCosine(wa, wb)
}

func weightedCosine(wa, wb map[string]float64) float64 {
	if len(wa) == 0 && len(wb) == 0 {
		return 1.0
	}
	var dot, magA, magB float64
	for t, va := range wa {
		magA += va * va
		if vb, ok := wb[t]; ok {
			dot += va * vb
		}
	}
	for _, vb := range wb {
		magB += vb * vb
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// ratcliffObershelp implements the "Gestalt pattern matching" metric:
// 2 * matching lines / total lines, where matching lines are found
// recursively via the longest common run of lines (driven by the
// linesToChars rune encoding, so "substring" here means "contiguous
// run of identical lines").
func ratcliffObershelp(linesA, linesB []string) float64 {
	if len(linesA) == 0 && len(linesB) == 0 {
		return 1.0
	}
	encA, encB := linesToChars(linesA, linesB)
	m := roMatches([]rune(encA), []rune(encB))
	total := len(linesA) + len(linesB)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(m) / float64(total)
}

func roMatches(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	start, length := longestCommonSubstring(a, b)
	if length == 0 {
		return 0
	}
	aIdx, bIdx := start[0], start[1]
	return length +
		roMatches(a[:aIdx], b[:bIdx]) +
		roMatches(a[aIdx+length:], b[bIdx+length:])
}

func longestCommonSubstring(a, b []rune) ([2]int, int) {
	m, n := len(a), len(b)
	prev := make([]int, n+1)
	cur := make([]int, n+1)
	bestLen, bestA, bestB := 0, 0, 0

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestLen {
					bestLen = cur[j]
					bestA = i - bestLen
					bestB = j - bestLen
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return [2]int{bestA, bestB}, bestLen
}

func qgramSimilarity(a, b string) (float64, error) {
	if a == "" && b == "" {
		return 1.0, nil
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.Qgram)
	return float64(score), err
}

func levenshteinSimilarity(linesA, linesB []string) (float64, error) {
	if len(linesA) == 0 && len(linesB) == 0 {
		return 1.0, nil
	}
	encA, encB := linesToChars(linesA, linesB)
	score, err := edlib.StringsSimilarity(encA, encB, edlib.Levenshtein)
	return float64(score), err
}

func damerauLevenshteinSimilarity(linesA, linesB []string) (float64, error) {
	if len(linesA) == 0 && len(linesB) == 0 {
		return 1.0, nil
	}
	encA, encB := linesToChars(linesA, linesB)
	score, err := edlib.StringsSimilarity(encA, encB, edlib.DamerauLevenshtein)
	return float64(score), err
}

func jaroWinklerSimilarity(a, b string) (float64, error) {
	if a == "" && b == "" {
		return 1.0, nil
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	return float64(score), err
}

// smithWaterman scores local alignment similarity: the best-scoring
// contiguous-gapped alignment between linesA and linesB (via the
// linesToChars rune encoding, so the DP operates line-by-line),
// normalized by the shorter side's line count. No pack library
// implements local sequence alignment, so this is a direct port of the
// textbook DP recurrence.
func smithWaterman(linesA, linesB []string) float64 {
	if len(linesA) == 0 && len(linesB) == 0 {
		return 1.0
	}
	if len(linesA) == 0 || len(linesB) == 0 {
		return 0.0
	}

	const (
		match    = 2
		mismatch = -1
		gap      = -1
	)

	encA, encB := linesToChars(linesA, linesB)
	a, b := []rune(encA), []rune(encB)
	m, n := len(a), len(b)
	prev := make([]int, n+1)
	cur := make([]int, n+1)
	best := 0

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			s := mismatch
			if a[i-1] == b[j-1] {
				s = match
			}
			v := prev[j-1] + s
			if d := prev[j] + gap; d > v {
				v = d
			}
			if l := cur[j-1] + gap; l > v {
				v = l
			}
			if v < 0 {
				v = 0
			}
			cur[j] = v
			if v > best {
				best = v
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}

	shorter := m
	if n < shorter {
		shorter = n
	}
	maxPossible := shorter * match
	if maxPossible == 0 {
		return 0.0
	}
	sim := float64(best) / float64(maxPossible)
	if sim > 1.0 {
		sim = 1.0
	}
	return sim
}
