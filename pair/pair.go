// pair.go - candidate pair generation
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

// Package pair implements spec §4.3: given the fingerprinted entries of
// two roots, produce the candidate Pair list the comparator will work
// through.
package pair

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/opencoff/fcmp"
	"go.uber.org/zap"
)

// Options controls pair generation.
type Options struct {
	Pairing     fcmp.Pairing
	TopK        int
	MaxPairs    int
	Concurrency int

	SignatureLessConfidence float64

	Log *zap.Logger
}

// scored is a candidate pairing with its estimated similarity, used
// only during all-vs-all ranking.
type scored struct {
	a, b *fcmp.FileEntry
	est  float64
}

// Generate produces the ordered Pair list for entriesA x entriesB
// under the configured Pairing strategy.
func Generate(entriesA, entriesB []*fcmp.FileEntry, opt Options) []fcmp.Pair {
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	if opt.SignatureLessConfidence <= 0 {
		opt.SignatureLessConfidence = 0.3
	}

	// Entries whose fingerprinting failed take no part in pairing.
	skipFailed := func(in []*fcmp.FileEntry) []*fcmp.FileEntry {
		out := make([]*fcmp.FileEntry, 0, len(in))
		for _, e := range in {
			if e.FingerprintErr == nil {
				out = append(out, e)
			}
		}
		return out
	}
	entriesA, entriesB = skipFailed(entriesA), skipFailed(entriesB)

	var pairs []fcmp.Pair
	switch opt.Pairing {
	case fcmp.SameName:
		pairs = pairSameName(entriesA, entriesB)
	case fcmp.AllVsAll:
		pairs = pairAllVsAll(entriesA, entriesB, opt)
	default:
		pairs = pairSamePath(entriesA, entriesB)
	}

	if opt.MaxPairs > 0 && len(pairs) > opt.MaxPairs {
		opt.Log.Warn("pair: truncating candidate list", zap.Int("total", len(pairs)), zap.Int("max_pairs", opt.MaxPairs))
		pairs = pairs[:opt.MaxPairs]
	}

	return pairs
}

// pairSamePath matches entries whose RelPath is identical on both
// sides - the default strategy (§4.3).
func pairSamePath(a, b []*fcmp.FileEntry) []fcmp.Pair {
	byPath := make(map[string]*fcmp.FileEntry, len(b))
	for _, e := range b {
		byPath[e.RelPath] = e
	}

	var out []fcmp.Pair
	for _, ea := range a {
		if eb, ok := byPath[ea.RelPath]; ok {
			out = append(out, makePair(ea, eb))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].A.RelPath < out[j].A.RelPath })
	return out
}

// pairSameName matches entries whose base filename (ignoring
// directory) is identical, regardless of path.
func pairSameName(a, b []*fcmp.FileEntry) []fcmp.Pair {
	byName := make(map[string][]*fcmp.FileEntry, len(b))
	for _, e := range b {
		name := filepath.Base(e.RelPath)
		byName[name] = append(byName[name], e)
	}

	var out []fcmp.Pair
	for _, ea := range a {
		name := filepath.Base(ea.RelPath)
		for _, eb := range byName[name] {
			out = append(out, makePair(ea, eb))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A.RelPath != out[j].A.RelPath {
			return out[i].A.RelPath < out[j].A.RelPath
		}
		return out[i].B.RelPath < out[j].B.RelPath
	})
	return out
}

// pairAllVsAll applies the blocking rules of §4.3 to every (a, b)
// combination, ranks survivors by estimated similarity, and keeps the
// top_k matches per left-side entry.
func pairAllVsAll(a, b []*fcmp.FileEntry, opt Options) []fcmp.Pair {
	topK := opt.TopK
	if topK <= 0 {
		topK = 10
	}

	// Ranking is embarrassingly row-parallel: each left-side entry's
	// candidate list is independent of every other's. One task per row,
	// per §5's "all-vs-all ranking" parallel region.
	perRow := make([][]fcmp.Pair, len(a))

	pool := fcmp.NewWorkPool(opt.Concurrency, func(_ int, i int) error {
		ea := a[i]
		var cands []scored
		for _, eb := range b {
			if !blocked(ea, eb) {
				cands = append(cands, scored{ea, eb, estimate(ea, eb, opt.SignatureLessConfidence)})
			}
		}
		sort.SliceStable(cands, func(x, y int) bool {
			if cands[x].est != cands[y].est {
				return cands[x].est > cands[y].est
			}
			return cands[x].b.RelPath < cands[y].b.RelPath
		})
		if len(cands) > topK {
			cands = cands[:topK]
		}

		row := make([]fcmp.Pair, len(cands))
		for j, c := range cands {
			row[j] = makePair(c.a, c.b)
		}
		perRow[i] = row
		return nil
	})

	for i := range a {
		pool.Submit(i)
	}
	pool.Close()
	_ = pool.Wait()

	var out []fcmp.Pair
	for _, row := range perRow {
		out = append(out, row...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].A.RelPath != out[j].A.RelPath {
			return out[i].A.RelPath < out[j].A.RelPath
		}
		return out[i].B.RelPath < out[j].B.RelPath
	})
	return out
}

// blocked applies the §4.3 blocking rules: two entries are rejected
// as a candidate pair if any rule fails.
func blocked(a, b *fcmp.FileEntry) bool {
	if !typeCompatible(a, b) {
		return true
	}
	if !sizeRatioOK(a.Size, b.Size) {
		return true
	}
	if a.HasSchema && b.HasSchema && a.Schema != b.Schema {
		return true
	}
	return false
}

// typeCompatible implements blocking rule #1: the FileTypes must be
// identical and, for Text entries, the go-enry language classifications
// of the two file names must overlap (or one side has none). There is
// no separate extension-compatibility table.
func typeCompatible(a, b *fcmp.FileEntry) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type != fcmp.Text {
		return true
	}

	langsA := enry.GetLanguagesByFilename(a.RelPath, nil, nil)
	langsB := enry.GetLanguagesByFilename(b.RelPath, nil, nil)
	if len(langsA) == 0 || len(langsB) == 0 {
		return true // no language signal from either side; don't block on it
	}
	return overlaps(langsA, langsB)
}

func overlaps(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[strings.ToLower(s)] = true
	}
	for _, s := range b {
		if set[strings.ToLower(s)] {
			return true
		}
	}
	return false
}

// sizeRatioOK implements blocking rule #2: the larger file must be no
// more than 10x the smaller, with a special case for two zero-byte
// files (always compatible).
func sizeRatioOK(szA, szB int64) bool {
	if szA == 0 && szB == 0 {
		return true
	}
	if szA == 0 || szB == 0 {
		return false
	}
	big, small := szA, szB
	if small > big {
		big, small = small, big
	}
	return float64(big)/float64(small) <= 10.0
}

// estimate computes the estimated similarity used to rank all-vs-all
// survivors (§4.3): Hamming-distance-derived similarity when both
// sides carry a SimHash signature, otherwise a size-ratio proxy scaled
// by confidence.
func estimate(a, b *fcmp.FileEntry, confidence float64) float64 {
	if a.HasSig && b.HasSig {
		dist := a.Sig.Hamming(b.Sig)
		return 1.0 - float64(dist)/64.0
	}

	big, small := a.Size, b.Size
	if small > big {
		big, small = small, big
	}
	if big == 0 {
		return confidence
	}
	ratio := float64(small) / float64(big)
	return ratio * confidence
}

// makePair builds a Pair with its deterministic LinkID.
func makePair(a, b *fcmp.FileEntry) fcmp.Pair {
	return fcmp.Pair{A: a, B: b, LinkID: fcmp.NewLinkID(a.Hash, b.Hash)}
}
