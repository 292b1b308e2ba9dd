// summary.go - fold a completed run's results into a Summary
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package engine

import "github.com/opencoff/fcmp"

// Summarize folds a completed run's results into a Summary (§6,
// SPEC_FULL §C.3): a single pass, float64-accumulated, with any NaN
// similarity (e.g. from a degenerate zero-length comparison) excluded
// from avg/min/max rather than poisoning them.
func Summarize(entriesA, entriesB []*fcmp.FileEntry, results []fcmp.ComparisonResult) *fcmp.Summary {
	s := &fcmp.Summary{TotalA: len(entriesA), TotalB: len(entriesB), PairsCompared: len(results)}

	var simSum float64
	var simCount int
	s.Min = 1.0
	s.Max = 0.0

	for _, r := range results {
		switch r.Kind {
		case fcmp.KindError:
			s.Errors++
		case fcmp.KindText:
			accumulate(s, &simSum, &simCount, r.Text.Similarity, r.Text.Identical)
		case fcmp.KindStructured:
			accumulate(s, &simSum, &simCount, r.Structured.Similarity, r.Structured.Identical)
		case fcmp.KindHashOnly:
			sim := 0.0
			if r.HashOnly.Identical {
				sim = 1.0
			}
			accumulate(s, &simSum, &simCount, sim, r.HashOnly.Identical)
		}
	}

	if simCount > 0 {
		s.AvgSimilarity = simSum / float64(simCount)
	} else {
		s.Min, s.Max = 0, 0
	}
	return s
}

func accumulate(s *fcmp.Summary, simSum *float64, simCount *int, sim float64, identical bool) {
	if sim != sim { // NaN guard
		return
	}
	if identical {
		s.Identical++
	} else {
		s.Different++
	}
	*simSum += sim
	*simCount++
	if sim < s.Min {
		s.Min = sim
	}
	if sim > s.Max {
		s.Max = sim
	}
}
