// walk_test.go - tests for the concurrent fs-walker
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package walk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func mkTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{"a.txt", "b/c.txt", "b/d/e.txt", ".git/HEAD"}
	for _, f := range files {
		p := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %s", err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %s", err)
		}
	}
	return root
}

func TestWalkFuncFiles(t *testing.T) {
	root := mkTree(t)

	var got []string
	err := WalkFunc(root, Options{Type: FILE, Concurrency: 2}, func(e *Entry) error {
		rel, _ := filepath.Rel(root, e.Path)
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("walkfunc: %s", err)
	}

	sort.Strings(got)
	want := []string{".git/HEAD", "a.txt", "b/c.txt", "b/d/e.txt"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestWalkExcludes(t *testing.T) {
	root := mkTree(t)

	var got []string
	err := WalkFunc(root, Options{Type: FILE, Excludes: []string{".git/**"}}, func(e *Entry) error {
		rel, _ := filepath.Rel(root, e.Path)
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("walkfunc: %s", err)
	}

	for _, g := range got {
		if g == ".git/HEAD" {
			t.Fatalf("excluded path leaked through: %v", got)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 files, got %v", got)
	}
}

func TestWalkFilter(t *testing.T) {
	root := mkTree(t)

	var got []string
	opt := Options{
		Type: FILE,
		Filter: func(e *Entry) (bool, error) {
			return filepath.Base(e.Path) == "d", nil
		},
	}
	err := WalkFunc(root, opt, func(e *Entry) error {
		rel, _ := filepath.Rel(root, e.Path)
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("walkfunc: %s", err)
	}
	for _, g := range got {
		if g == "b/d/e.txt" {
			t.Fatalf("filtered directory was still descended: %v", got)
		}
	}
}

func TestWalkSingleFile(t *testing.T) {
	root := mkTree(t)
	file := filepath.Join(root, "a.txt")

	var got []string
	err := WalkFunc(file, Options{Type: FILE}, func(e *Entry) error {
		got = append(got, e.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("walkfunc: %s", err)
	}
	if len(got) != 1 || got[0] != file {
		t.Fatalf("got %v want [%s]", got, file)
	}
}
