package fcmp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type collectingObserver struct {
	events []ProgressEvent
}

func (c *collectingObserver) Accept(ev ProgressEvent) {
	c.events = append(c.events, ev)
}

func TestProgressTrackerAdvance(t *testing.T) {
	obs := &collectingObserver{}
	pt := NewProgressTracker(obs, StageComparing, 10)

	pt.Advance(3, "first batch")
	pt.Advance(7, "second batch")

	require.Len(t, obs.events, 2)
	require.Equal(t, int64(3), obs.events[0].Current)
	require.InDelta(t, 30.0, obs.events[0].Percentage, 0.001)
	require.Equal(t, int64(10), obs.events[1].Current)
	require.InDelta(t, 100.0, obs.events[1].Percentage, 0.001)
}

func TestProgressTrackerSetIsAbsolute(t *testing.T) {
	obs := &collectingObserver{}
	pt := NewProgressTracker(obs, StageFingerprinting, 4)

	pt.Set(2, "two of four")
	pt.Set(4, "all done")

	require.Len(t, obs.events, 2)
	require.Equal(t, int64(2), obs.events[0].Current)
	require.Equal(t, int64(4), obs.events[1].Current)
	require.InDelta(t, 100.0, obs.events[1].Percentage, 0.001)
}

func TestProgressTrackerNilObserverDoesNotPanic(t *testing.T) {
	pt := NewProgressTracker(nil, StageIndexing, 0)
	require.NotPanics(t, func() { pt.Advance(1, "anything") })
}

func TestProgressTrackerZeroTotalHasZeroPercentage(t *testing.T) {
	obs := &collectingObserver{}
	pt := NewProgressTracker(obs, StageMatching, 0)

	pt.Advance(1, "")
	require.Equal(t, 0.0, obs.events[0].Percentage)
}
