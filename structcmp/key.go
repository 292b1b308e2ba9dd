// key.go - composite-key extraction and sorting
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package structcmp

import (
	"sort"
	"strings"
	"sync"
)

// keyedRow pairs a row with its composite key string, precomputed once
// so the merge-scan never re-derives it.
type keyedRow struct {
	key string
	row []string
}

// keyIndices resolves keyColumns to header positions. An empty
// keyColumns falls back to the first column (§4.5).
func keyIndices(header []string, keyColumns []string) ([]int, bool) {
	if len(keyColumns) == 0 {
		if len(header) == 0 {
			return nil, false
		}
		return []int{0}, true
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make([]int, 0, len(keyColumns))
	for _, kc := range keyColumns {
		i, ok := pos[strings.ToLower(strings.TrimSpace(kc))]
		if !ok {
			return nil, false
		}
		idx = append(idx, i)
	}
	return idx, true
}

func rowKey(row []string, idx []int) string {
	parts := make([]string, len(idx))
	for i, col := range idx {
		if col < len(row) {
			parts[i] = row[col]
		}
	}
	return strings.Join(parts, "\x1f")
}

// keySortRows computes keys and sorts rows by key, in place. The two
// sides of a comparison are independent, so the caller sorts both
// concurrently (§4.5: "parallel in-memory sort"). The sort must be
// stable: duplicate keys within a side are preserved in input order so
// they compare positionally against same-keyed duplicates on the other
// side (§4.5 step 2).
func keySortRows(rows [][]string, idx []int) []keyedRow {
	out := make([]keyedRow, len(rows))
	for i, row := range rows {
		out[i] = keyedRow{key: rowKey(row, idx), row: row}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// keySortBothSides sorts rowsA and rowsB concurrently on two
// goroutines.
func keySortBothSides(rowsA, rowsB [][]string, idxA, idxB []int) (a, b []keyedRow) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); a = keySortRows(rowsA, idxA) }()
	go func() { defer wg.Done(); b = keySortRows(rowsB, idxB) }()
	wg.Wait()
	return a, b
}
