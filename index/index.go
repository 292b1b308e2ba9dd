// index.go - directory walk, filtering, type classification
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package index implements spec §4.1: for each root (a file or a
// directory), produce an ordered, deduplicated list of fcmp.FileEntry
// records.
package index

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/opencoff/fcmp"
	"github.com/opencoff/fcmp/walk"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// Options controls one side's indexing pass.
type Options struct {
	ExcludePatterns []string
	Concurrency     int

	// Warn receives a human-readable notice for every soft failure
	// (§4.1: "Fails individual files softly (skip with a warning
	// event)").
	Warn func(path string, err error)

	Log *zap.Logger
}

// Index walks root (a file or a directory) and returns its FileEntry
// records sorted by relative path, per §4.1's determinism requirement.
// Only a missing root or a permission failure at the root itself is
// fatal; every other per-file failure is skipped with a warning.
func Index(root string, opt Options) ([]*fcmp.FileEntry, error) {
	if opt.Warn == nil {
		opt.Warn = func(string, error) {}
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &fcmp.Error{Op: "index-abs", PathA: root, Err: err}
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return nil, &fcmp.Error{Op: "index-root", PathA: root, Err: err}
	}
	if info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(absRoot)
		if err != nil {
			return nil, &fcmp.Error{Op: "index-root-symlink", PathA: root, Err: err}
		}
		absRoot = resolved
		if info, err = os.Stat(absRoot); err != nil {
			return nil, &fcmp.Error{Op: "index-root", PathA: root, Err: err}
		}
	}

	var entries []*fcmp.FileEntry

	if !info.IsDir() {
		fe, err := classifyFile(absRoot, filepath.Base(absRoot), info.Size())
		if err != nil {
			return nil, &fcmp.Error{Op: "index-classify", PathA: absRoot, Err: err}
		}
		return []*fcmp.FileEntry{fe}, nil
	}

	wo := walk.Options{
		Concurrency: opt.Concurrency,
		Type:        walk.FILE,
		Excludes:    opt.ExcludePatterns,
	}

	// byPath dedups concurrent walk callbacks without a hand-rolled
	// mutex - the same idiom the teacher's cmp package uses for its
	// done/funny/diff maps, repurposed here to collect classified
	// entries keyed by relative path.
	byPath := xsync.NewMapOf[string, *fcmp.FileEntry]()
	err = walk.WalkFunc(absRoot, wo, func(e *walk.Entry) error {
		rel, rerr := filepath.Rel(absRoot, e.Path)
		if rerr != nil {
			rel = e.Path
		}

		fe, cerr := classifyFile(e.Path, rel, e.Size)
		if cerr != nil {
			opt.Warn(e.Path, cerr)
			opt.Log.Warn("indexing: skipped file", zap.String("path", e.Path), zap.Error(cerr))
			return nil
		}

		byPath.Store(rel, fe)
		return nil
	})
	if err != nil {
		// WalkFunc returns the joined per-path failures of the walk
		// itself (an unreadable subdirectory, a failed lstat, a bad
		// exclude pattern); treat the aggregate as non-fatal warnings
		// too, matching §4.1 (only missing-root/permission-at-root is
		// fatal).
		opt.Warn(absRoot, err)
		opt.Log.Warn("indexing: walk reported errors", zap.Error(err))
	}

	entries = make([]*fcmp.FileEntry, 0, byPath.Size())
	byPath.Range(func(_ string, fe *fcmp.FileEntry) bool {
		entries = append(entries, fe)
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelPath < entries[j].RelPath
	})

	return entries, nil
}
