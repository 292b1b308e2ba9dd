// engine_test.go - end-to-end pipeline tests
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencoff/fcmp"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestEngineIdenticalTextFolders(t *testing.T) {
	a := writeTree(t, map[string]string{"readme.txt": "hello\nworld\n"})
	b := writeTree(t, map[string]string{"readme.txt": "hello\nworld\n"})

	e := New(nil)
	summary, results, err := e.Run(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, fcmp.KindText, results[0].Kind)
	require.True(t, results[0].Text.Identical)
	require.Equal(t, 1, summary.Identical)
	require.Equal(t, 0, summary.Errors)
}

func TestEngineReorderedCSVMatchesByKey(t *testing.T) {
	a := writeTree(t, map[string]string{"rows.csv": "id,name\n1,alice\n2,bob\n"})
	b := writeTree(t, map[string]string{"rows.csv": "id,name\n2,bob\n1,alice\n"})

	e := New(nil)
	_, results, err := e.Run(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, fcmp.KindStructured, results[0].Kind)
	require.True(t, results[0].Structured.Identical)
}

func TestEngineNumericDriftWithinTolerance(t *testing.T) {
	a := writeTree(t, map[string]string{"rows.csv": "id,amount\n1,10.00\n"})
	b := writeTree(t, map[string]string{"rows.csv": "id,amount\n1,10.004\n"})

	cfg := fcmp.Default()
	cfg.NumericTolerance = 0.01
	e := New(cfg)
	_, results, err := e.Run(context.Background(), a, b)
	require.NoError(t, err)
	require.True(t, results[0].Structured.Identical)
}

func TestEngineRenamedFileMatchedViaAllVsAll(t *testing.T) {
	a := writeTree(t, map[string]string{"old_name.txt": "the quick brown fox\njumps over the lazy dog\n"})
	b := writeTree(t, map[string]string{"new_name.txt": "the quick brown fox\njumps over the lazy dog\n"})

	cfg := fcmp.Default()
	cfg.Pairing = fcmp.AllVsAll
	e := New(cfg)
	_, results, err := e.Run(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Text.Identical)
}

func TestEngineBinaryMismatchIsHashOnly(t *testing.T) {
	a := writeTree(t, map[string]string{"blob.bin": "\x00\x01\x02binary-a"})
	b := writeTree(t, map[string]string{"blob.bin": "\x00\x01\x02binary-b"})

	e := New(nil)
	_, results, err := e.Run(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, fcmp.KindHashOnly, results[0].Kind)
	require.False(t, results[0].HashOnly.Identical)
}

func TestEngineMissingRootIsFatal(t *testing.T) {
	a := writeTree(t, map[string]string{"f.txt": "x"})

	e := New(nil)
	_, _, err := e.Run(context.Background(), a, filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}

func TestEngineProgressObserverSeesAllStages(t *testing.T) {
	a := writeTree(t, map[string]string{"f.txt": "x\n"})
	b := writeTree(t, map[string]string{"f.txt": "x\n"})

	var stages []fcmp.Stage
	obs := observerFunc(func(ev fcmp.ProgressEvent) {
		stages = append(stages, ev.Stage)
	})

	e := New(nil, WithObserver(obs))
	_, _, err := e.Run(context.Background(), a, b)
	require.NoError(t, err)

	seen := make(map[fcmp.Stage]bool, len(stages))
	for _, s := range stages {
		seen[s] = true
	}
	require.True(t, seen[fcmp.StageIndexing])
	require.True(t, seen[fcmp.StageFingerprinting])
	require.True(t, seen[fcmp.StageMatching])
	require.True(t, seen[fcmp.StageComparing])
	require.True(t, seen[fcmp.StageReporting])
}

func TestEngineCancelStopsBeforeCompare(t *testing.T) {
	a := writeTree(t, map[string]string{"f.txt": "x\n"})
	b := writeTree(t, map[string]string{"f.txt": "x\n"})

	e := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // canceled before Run even starts

	_, _, err := e.Run(ctx, a, b)
	require.Error(t, err)
}

type observerFunc func(fcmp.ProgressEvent)

func (f observerFunc) Accept(ev fcmp.ProgressEvent) { f(ev) }
