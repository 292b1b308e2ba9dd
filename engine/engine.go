// engine.go - top-level pipeline orchestration
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

// Package engine wires index, fingerprint, pair and compare into the
// five-stage pipeline of spec §2: Index -> Fingerprint -> Pair ->
// Compare, with a Summary fold at the end. It is the only package in
// the module that imports all four.
package engine

import (
	"context"
	"sync/atomic"

	"github.com/opencoff/fcmp"
	"github.com/opencoff/fcmp/compare"
	"github.com/opencoff/fcmp/fingerprint"
	"github.com/opencoff/fcmp/index"
	"github.com/opencoff/fcmp/pair"
	"github.com/opencoff/fcmp/structcmp"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func init() {
	// Respect a container's cgroup CPU quota when sizing GOMAXPROCS, so
	// the concurrency defaults threaded through every WorkPool below
	// don't over-subscribe a throttled environment.
	_, _ = maxprocs.Set()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger injects a *zap.Logger. Unset, the engine logs nowhere.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithObserver wires a progress observer (spec §6). Unset, progress
// events are discarded.
func WithObserver(obs fcmp.Observer) Option {
	return func(e *Engine) { e.obs = obs }
}

// WithSpreadsheetReader injects the structured comparator's pluggable
// spreadsheet decoder (§9 "Spreadsheet single-sheet limitation"). Left
// unset, a Spreadsheet-typed pair yields a KindError result (kind
// ErrIO) rather than silently falling back to a CSV parse.
func WithSpreadsheetReader(sr structcmp.SpreadsheetReader) Option {
	return func(e *Engine) { e.spreadsheet = sr }
}

// Engine runs the pipeline against two roots. A single instance can be
// canceled from another goroutine via Cancel. Run checks for
// cancellation after each stage completes; work inside a stage
// (indexing, fingerprinting, pairing, comparing) is not interrupted and
// runs to the end of that stage. Each Engine carries its own
// cancellation flag rather than a package-level one, so multiple
// engines in one process don't share state.
type Engine struct {
	cfg *fcmp.CompareConfig
	log *zap.Logger
	obs fcmp.Observer

	spreadsheet structcmp.SpreadsheetReader

	cancel context.CancelFunc
}

// New builds an Engine from cfg (nil uses fcmp.Default()) and options.
func New(cfg *fcmp.CompareConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = fcmp.Default()
	}
	e := &Engine{cfg: cfg, log: zap.NewNop(), obs: fcmp.NopObserver{}}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Cancel requests cooperative cancellation of an in-flight Run.
// Safe to call from another goroutine; a no-op before Run starts or
// after it returns.
func (e *Engine) Cancel() {
	if e.cancel != nil {
		e.cancel()
	}
}

// Run drives the full pipeline: both roots are indexed and
// fingerprinted concurrently (an errgroup fans the two independent
// sides out, per §5), then Pair and Compare run over the combined
// result. Run returns ctx.Err() (wrapped) if canceled before
// completion.
func (e *Engine) Run(ctx context.Context, rootA, rootB string) (*fcmp.Summary, []fcmp.ComparisonResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	defer cancel()

	e.emit(fcmp.StageIndexing, "indexing both roots", 0, 0)

	var entriesA, entriesB []*fcmp.FileEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entriesA, err = index.Index(rootA, index.Options{
			ExcludePatterns: e.cfg.ExcludePatterns,
			Concurrency:     e.cfg.Concurrency,
			Warn:            e.warn,
			Log:             e.log,
		})
		return checkCtx(gctx, err)
	})
	g.Go(func() error {
		var err error
		entriesB, err = index.Index(rootB, index.Options{
			ExcludePatterns: e.cfg.ExcludePatterns,
			Concurrency:     e.cfg.Concurrency,
			Warn:            e.warn,
			Log:             e.log,
		})
		return checkCtx(gctx, err)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	fpTotal := int64(len(entriesA) + len(entriesB))
	e.emit(fcmp.StageFingerprinting, "fingerprinting", 0, fpTotal)
	fpSides := newTwoSideProgress(fcmp.NewProgressTracker(e.obs, fcmp.StageFingerprinting, fpTotal))
	fg, fgctx := errgroup.WithContext(ctx)
	fg.Go(func() error {
		fingerprint.Fingerprint(entriesA, e.fingerprintOptions(fpSides.left))
		return fgctx.Err()
	})
	fg.Go(func() error {
		fingerprint.Fingerprint(entriesB, e.fingerprintOptions(fpSides.right))
		return fgctx.Err()
	})
	if err := fg.Wait(); err != nil {
		return nil, nil, &fcmp.Error{Op: "run", Err: err}
	}

	e.emit(fcmp.StageMatching, "generating candidate pairs", 0, 0)
	pairs := pair.Generate(entriesA, entriesB, pair.Options{
		Pairing:                 e.cfg.Pairing,
		TopK:                    e.cfg.TopK,
		MaxPairs:                e.cfg.MaxPairs,
		Concurrency:             e.cfg.Concurrency,
		SignatureLessConfidence: e.cfg.SignatureLessConfidence,
		Log:                     e.log,
	})
	if ctx.Err() != nil {
		return nil, nil, &fcmp.Error{Op: "run", Err: ctx.Err()}
	}

	cmpTotal := int64(len(pairs))
	e.emit(fcmp.StageComparing, "comparing", 0, cmpTotal)
	cmpTracker := fcmp.NewProgressTracker(e.obs, fcmp.StageComparing, cmpTotal)
	cmpProgress := func(done, total int64) { cmpTracker.Set(done, "comparing") }
	results := compare.Run(pairs, compare.Options{
		Mode:             e.cfg.Mode,
		Normalization:    e.cfg.TextNormalization,
		Algorithm:        e.cfg.SimilarityAlgorithm,
		IgnoreRegex:      e.cfg.IgnoreRegex(),
		MaxDiffBytes:     e.cfg.MaxDiffBytes,
		KeyColumns:       e.cfg.KeyColumns,
		IgnoreColumns:    e.cfg.IgnoreColumns,
		NumericTolerance: e.cfg.NumericTolerance,
		Spreadsheet:      e.spreadsheet,
		Concurrency:      e.cfg.Concurrency,
		Log:              e.log,
	}, cmpProgress)
	if ctx.Err() != nil {
		return nil, nil, &fcmp.Error{Op: "run", Err: ctx.Err()}
	}

	e.emit(fcmp.StageReporting, "summarizing", int64(len(results)), int64(len(results)))
	summary := Summarize(entriesA, entriesB, results)

	return summary, results, nil
}

func (e *Engine) fingerprintOptions(progress func(done, total int64)) fingerprint.Options {
	return fingerprint.Options{
		TextNormalization:  e.cfg.TextNormalization,
		MaxFingerprintSize: e.cfg.MaxFingerprintSize,
		Concurrency:        e.cfg.Concurrency,
		Progress:           progress,
		Log:                e.log,
	}
}

func (e *Engine) warn(path string, err error) {
	e.log.Warn("skipped", zap.String("path", path), zap.Error(err))
}

func (e *Engine) emit(stage fcmp.Stage, msg string, current, total int64) {
	pct := 0.0
	if total > 0 {
		pct = 100.0 * float64(current) / float64(total)
	}
	e.obs.Accept(fcmp.ProgressEvent{Stage: stage, Message: msg, Current: current, Total: total, Percentage: pct})
}

func checkCtx(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	return ctx.Err()
}

// twoSideProgress combines two independent per-root fingerprint.Options
// progress callbacks (each reporting its own done/total against entriesA
// or entriesB) into a single combined fcmp.ProgressTracker update, so
// the Observer sees one Stage's worth of progress rather than two
// interleaved, independently-ranged streams.
type twoSideProgress struct {
	t    *fcmp.ProgressTracker
	a, b atomic.Int64
}

func newTwoSideProgress(t *fcmp.ProgressTracker) *twoSideProgress {
	return &twoSideProgress{t: t}
}

func (p *twoSideProgress) left(done, _ int64) {
	p.a.Store(done)
	p.t.Set(p.a.Load()+p.b.Load(), "fingerprinting")
}

func (p *twoSideProgress) right(done, _ int64) {
	p.b.Store(done)
	p.t.Set(p.a.Load()+p.b.Load(), "fingerprinting")
}
