// compare.go - per-pair dispatch
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

// Package compare implements spec §4.6: dispatches each candidate Pair
// to the text, structured, or hash-only comparator and produces a
// ComparisonResult. A per-pair failure is always reported as a
// KindError result - it never aborts the run (§7).
package compare

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/grafana/regexp"
	"github.com/opencoff/fcmp"
	"github.com/opencoff/fcmp/structcmp"
	"github.com/opencoff/fcmp/textcmp"
	"go.uber.org/zap"
)

// Options carries the subset of CompareConfig the per-pair dispatcher
// needs.
type Options struct {
	Mode fcmp.CompareMode

	Normalization    fcmp.TextNormalization
	Algorithm        fcmp.SimilarityAlgorithm
	IgnoreRegex      *regexp.Regexp
	MaxDiffBytes     int64
	KeyColumns       []string
	IgnoreColumns    []string
	NumericTolerance float64
	Spreadsheet      structcmp.SpreadsheetReader

	Concurrency int
	Log         *zap.Logger
}

// Run dispatches every pair to the appropriate comparator, fanning
// work out across Options.Concurrency workers via fcmp.WorkPool (§5's
// third parallel region: "per-pair comparison"). Results preserve the
// input pair order.
func Run(pairs []fcmp.Pair, opt Options, progress func(done, total int64)) []fcmp.ComparisonResult {
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}

	out := make([]fcmp.ComparisonResult, len(pairs))
	total := int64(len(pairs))
	var done atomic.Int64

	pool := fcmp.NewWorkPool(opt.Concurrency, func(_ int, i int) error {
		out[i] = one(pairs[i], opt)
		n := done.Add(1)
		if progress != nil {
			progress(n, total)
		}
		return nil
	})
	for i := range pairs {
		pool.Submit(i)
	}
	pool.Close()
	_ = pool.Wait()

	return out
}

// one compares a single pair, recovering from a panic in any
// downstream comparator and converting it into a KindError result.
func one(p fcmp.Pair, opt Options) (res fcmp.ComparisonResult) {
	res = fcmp.ComparisonResult{LinkID: p.LinkID, PathA: p.A.RelPath, PathB: p.B.RelPath}

	defer func() {
		if r := recover(); r != nil {
			res.Kind = fcmp.KindError
			res.Err = &fcmp.ErrorResult{Kind: fcmp.ErrPanic, Message: panicMessage(r)}
		}
	}()

	if p.A.FingerprintErr != nil || p.B.FingerprintErr != nil {
		res.Kind = fcmp.KindError
		res.Err = &fcmp.ErrorResult{Kind: fcmp.ErrIO, Message: firstNonNil(p.A.FingerprintErr, p.B.FingerprintErr).Error()}
		return res
	}

	kind := resolveKind(p, opt.Mode)
	switch kind {
	case fcmp.KindError:
		res.Kind = fcmp.KindError
		res.Err = &fcmp.ErrorResult{
			Kind:    fcmp.ErrTypeMismatch,
			Message: typeMismatchMessage(p),
		}

	case fcmp.KindText:
		tr, err := textcmp.Compare(p.A.AbsPath, p.B.AbsPath, textcmp.Options{
			Normalization: opt.Normalization,
			Algorithm:     opt.Algorithm,
			IgnoreRegex:   opt.IgnoreRegex,
			MaxDiffBytes:  opt.MaxDiffBytes,
		})
		if err != nil {
			res.Kind = fcmp.KindError
			res.Err = &fcmp.ErrorResult{Kind: fcmp.ErrIO, Message: err.Error()}
			return res
		}
		if tr.DiffTruncated {
			opt.Log.Warn("text diff truncated", zap.String("path_a", p.A.RelPath),
				zap.String("max_diff_bytes", humanize.IBytes(uint64(opt.MaxDiffBytes))))
		}
		res.Kind = fcmp.KindText
		res.Text = tr

	case fcmp.KindStructured:
		sr, err := structcmp.Compare(p.A, p.B, structcmp.Options{
			KeyColumns:       opt.KeyColumns,
			IgnoreColumns:    opt.IgnoreColumns,
			NumericTolerance: opt.NumericTolerance,
			Spreadsheet:      opt.Spreadsheet,
		})
		if err != nil {
			res.Kind = fcmp.KindError
			res.Err = &fcmp.ErrorResult{Kind: errKindOf(err), Message: err.Error()}
			return res
		}
		res.Kind = fcmp.KindStructured
		res.Structured = sr

	default:
		res.Kind = fcmp.KindHashOnly
		res.HashOnly = &fcmp.HashOnlyResult{
			SizeA:     p.A.Size,
			SizeB:     p.B.Size,
			Identical: p.A.Hash == p.B.Hash,
		}
	}

	return res
}

// resolveKind decides how to compare a pair: an explicit CompareMode
// override wins, otherwise the pair's own FileType decides. A
// type-mismatched pair (e.g. Text vs Structured) resolves to
// fcmp.KindError - the caller reports it as an ErrTypeMismatch error
// rather than silently picking a side.
func resolveKind(p fcmp.Pair, mode fcmp.CompareMode) fcmp.ResultKind {
	switch mode {
	case fcmp.ModeForceText:
		return fcmp.KindText
	case fcmp.ModeForceStructured:
		return fcmp.KindStructured
	}

	if p.A.Type != p.B.Type {
		return fcmp.KindError
	}
	switch p.A.Type {
	case fcmp.Text:
		return fcmp.KindText
	case fcmp.Structured, fcmp.Spreadsheet:
		return fcmp.KindStructured
	default:
		return fcmp.KindHashOnly
	}
}

func typeMismatchMessage(p fcmp.Pair) string {
	return fmt.Sprintf("type mismatch: %s is %s, %s is %s", p.A.RelPath, p.A.Type, p.B.RelPath, p.B.Type)
}

func firstNonNil(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func errKindOf(err error) fcmp.ErrorKind {
	if fe, ok := err.(*fcmp.Error); ok && fe.Op == "structcmp-key" {
		return fcmp.ErrSchema
	}
	return fcmp.ErrIO
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "panic in comparator"
}
