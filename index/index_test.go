// index_test.go - tests for the indexing stage
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opencoff/fcmp"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %s", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %s", err)
	}
	return p
}

func TestIndexClassifiesTypes(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.txt", "hello world\n")
	write(t, root, "b.csv", "id,name,amount\n1,foo,2.5\n")
	write(t, root, "c.bin", "abc\x00def")

	entries, err := Index(root, Options{})
	if err != nil {
		t.Fatalf("index: %s", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}

	byName := make(map[string]*fcmp.FileEntry, len(entries))
	for _, e := range entries {
		byName[e.RelPath] = e
	}

	if e := byName["a.txt"]; e == nil || e.Type != fcmp.Text {
		t.Fatalf("a.txt misclassified: %+v", e)
	}
	if e := byName["b.csv"]; e == nil || e.Type != fcmp.Structured || e.Delimiter != fcmp.Comma {
		t.Fatalf("b.csv misclassified: %+v", e)
	} else if len(e.Columns) != 3 || e.Columns[1] != "name" {
		t.Fatalf("b.csv header not captured: %+v", e.Columns)
	}
	if e := byName["c.bin"]; e == nil || e.Type != fcmp.Binary {
		t.Fatalf("c.bin misclassified: %+v", e)
	}
}

func TestIndexSortedDeterministic(t *testing.T) {
	root := t.TempDir()
	write(t, root, "z.txt", "z")
	write(t, root, "a.txt", "a")
	write(t, root, "m/x.txt", "x")

	entries, err := Index(root, Options{})
	if err != nil {
		t.Fatalf("index: %s", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"a.txt", "m/x.txt", "z.txt"}
	for i, w := range want {
		if entries[i].RelPath != w {
			t.Fatalf("entry %d: got %s want %s", i, entries[i].RelPath, w)
		}
	}
}

func TestIndexExcludePatterns(t *testing.T) {
	root := t.TempDir()
	write(t, root, "keep.txt", "keep")
	write(t, root, ".git/HEAD", "ref")

	entries, err := Index(root, Options{ExcludePatterns: []string{".git/**"}})
	if err != nil {
		t.Fatalf("index: %s", err)
	}
	if len(entries) != 1 || entries[0].RelPath != "keep.txt" {
		t.Fatalf("exclude pattern not honored: %+v", entries)
	}
}

func TestIndexSingleFileRoot(t *testing.T) {
	root := t.TempDir()
	p := write(t, root, "solo.txt", "solo")

	entries, err := Index(p, Options{})
	if err != nil {
		t.Fatalf("index: %s", err)
	}
	if len(entries) != 1 || entries[0].Type != fcmp.Text {
		t.Fatalf("single-file root misclassified: %+v", entries)
	}
}

func TestIndexMissingRootIsFatal(t *testing.T) {
	_, err := Index(filepath.Join(t.TempDir(), "nope"), Options{})
	if err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestIndexSoftSkipsUnreadable(t *testing.T) {
	root := t.TempDir()
	write(t, root, "ok.txt", "ok")
	bad := write(t, root, "bad.txt", "bad")
	if err := os.Chmod(bad, 0o000); err != nil {
		t.Skipf("cannot chmod in this environment: %s", err)
	}
	defer os.Chmod(bad, 0o644)

	var warned []string
	entries, err := Index(root, Options{
		Warn: func(path string, _ error) { warned = append(warned, path) },
	})
	if err != nil {
		t.Fatalf("index should not fail on a single unreadable file: %s", err)
	}
	if len(entries) != 1 || entries[0].RelPath != "ok.txt" {
		t.Fatalf("expected only ok.txt to be indexed, got %+v", entries)
	}
	if len(warned) == 0 {
		t.Fatalf("expected a warning for the unreadable file")
	}
}
