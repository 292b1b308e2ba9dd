// progress.go - lock-free progress reporting
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

package fcmp

import "sync/atomic"

// ProgressTracker emits ProgressEvent values to an Observer using
// atomic counters, per §5: "its write path is lock-free (atomic
// counters) with an emission callback invoked from arbitrary worker
// threads". It never blocks the caller. Exported for use by engine,
// which owns the orchestration of which WorkPool-driven callback
// feeds which stage's tracker.
type ProgressTracker struct {
	obs     Observer
	stage   Stage
	total   int64
	current atomic.Int64
}

// NewProgressTracker builds a tracker that reports total units of work
// for stage to obs. A nil obs is replaced with NopObserver{}.
func NewProgressTracker(obs Observer, stage Stage, total int64) *ProgressTracker {
	if obs == nil {
		obs = NopObserver{}
	}
	return &ProgressTracker{obs: obs, stage: stage, total: total}
}

// Advance bumps the counter by n and emits a ProgressEvent.
func (p *ProgressTracker) Advance(n int64, message string) {
	p.emit(p.current.Add(n), message)
}

// Set pins the counter to an absolute value - for callers (such as a
// shared fcmp.WorkPool counter) that already track a cumulative total
// themselves and only need it relayed to the Observer.
func (p *ProgressTracker) Set(n int64, message string) {
	p.current.Store(n)
	p.emit(n, message)
}

func (p *ProgressTracker) emit(cur int64, message string) {
	pct := 0.0
	if p.total > 0 {
		pct = 100 * float64(cur) / float64(p.total)
		if pct > 100 {
			pct = 100
		}
	}
	p.obs.Accept(ProgressEvent{
		Stage:      p.stage,
		Message:    message,
		Current:    cur,
		Total:      p.total,
		Percentage: pct,
	})
}
