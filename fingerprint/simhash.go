// simhash.go - 64-bit locality-sensitive similarity signature
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package fingerprint

import (
	"bufio"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/opencoff/fcmp"
)

// shingleSize is the n-gram width used to build the SimHash's
// shingle set, per §4.2: "word/line 3-grams".
const shingleSize = 3

// SimHash computes a 64-bit locality-sensitive signature for path's
// text content. The shingle set is the union of 3-grams of the file's
// whitespace-split tokens and 3-grams of its lines (§4.2), hashed with
// xxhash and combined by the standard bit-weighted-vote construction.
// maxSize caps how much of the file is read (§4.2's
// max_fingerprint_size); files larger than maxSize are read up to the
// cap and signed on that prefix.
func SimHash(path string, norm fcmp.TextNormalization, maxSize int64) (fcmp.Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var tokens []string
	var lines []string

	r := bufio.NewReaderSize(f, defaultChunkSize)
	var read int64
	for {
		line, rerr := r.ReadString('\n')
		if len(line) > 0 {
			if maxSize > 0 && read+int64(len(line)) > maxSize {
				line = line[:maxSize-read]
			}
			read += int64(len(line))

			nl := fcmp.NormalizeLine(strings.TrimSuffix(line, "\n"), norm)
			if nl != "" || !norm.Has(fcmp.SkipEmptyLines) {
				lines = append(lines, nl)
				tokens = append(tokens, strings.Fields(nl)...)
			}
		}
		if rerr != nil || (maxSize > 0 && read >= maxSize) {
			break
		}
	}

	wordShingles := shinglesOf(tokens, shingleSize)
	lineShingles := shinglesOf(lines, shingleSize)
	shingles := make([]string, 0, len(wordShingles)+len(lineShingles))
	shingles = append(shingles, wordShingles...)
	shingles = append(shingles, lineShingles...)
	if len(shingles) == 0 {
		return 0, nil
	}

	var vote [64]int
	for _, sh := range shingles {
		h := xxhash.Sum64String(sh)
		for b := 0; b < 64; b++ {
			if h&(1<<uint(b)) != 0 {
				vote[b]++
			} else {
				vote[b]--
			}
		}
	}

	var sig uint64
	for b := 0; b < 64; b++ {
		if vote[b] > 0 {
			sig |= 1 << uint(b)
		}
	}
	return fcmp.Signature(sig), nil
}

// shinglesOf joins consecutive runs of n tokens with a separator byte
// unlikely to occur in source text, producing the shingle strings to
// hash.
func shinglesOf(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], "\x1f"))
	}
	return out
}
