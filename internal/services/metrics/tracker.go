package metrics

import (
	"time"

	"github.com/taptowin/taptowin/internal/dependencies/clock"
	"github.com/taptowin/taptowin/internal/model"
)

const (
	// StreakMaxGap is the longest pause between clicks that still extends
	// the current streak
	StreakMaxGap = 3 * time.Second

	// RateWindow is the trailing window for the clicks-per-minute figure
	RateWindow = time.Minute
)

// Tracker maintains session-scoped counters derived from raw click events:
// total clicks, a trailing click rate, and the rapid-click streak. It never
// touches currency.
type Tracker struct {
	clock clock.Clock

	sessionStart  time.Time
	window        []time.Time
	lastClickAt   time.Time
	currentStreak int
}

// New creates a Tracker; StartSession must be called before recording clicks
func New(clk clock.Clock) *Tracker {
	return &Tracker{clock: clk}
}

// StartSession resets all session-scoped counters and marks the session start
func (t *Tracker) StartSession() {
	t.sessionStart = t.clock.Now()
	t.window = t.window[:0]
	t.lastClickAt = time.Time{}
	t.currentStreak = 0
}

// RecordClick registers a click at the current time. It increments the
// state's TotalClicks, extends or restarts the streak depending on the gap
// since the previous click, and raises BestStreak when exceeded.
func (t *Tracker) RecordClick(state *model.PlayerState) {
	now := t.clock.Now()

	state.TotalClicks++

	if !t.lastClickAt.IsZero() && now.Sub(t.lastClickAt) <= StreakMaxGap {
		t.currentStreak++
	} else {
		t.currentStreak = 1
	}
	t.lastClickAt = now

	if t.currentStreak > state.BestStreak {
		state.BestStreak = t.currentStreak
	}

	t.window = append(t.window, now)
	t.prune(now)
}

// ClicksPerMinute returns the click rate over the trailing window
func (t *Tracker) ClicksPerMinute() float64 {
	t.prune(t.clock.Now())
	return float64(len(t.window)) * float64(time.Minute) / float64(RateWindow)
}

// CurrentStreak returns the length of the in-progress streak
func (t *Tracker) CurrentStreak() int {
	return t.currentStreak
}

// SessionDuration returns time elapsed since the session started
func (t *Tracker) SessionDuration() time.Duration {
	if t.sessionStart.IsZero() {
		return 0
	}
	return t.clock.Now().Sub(t.sessionStart)
}

// prune drops window entries older than the rate window
func (t *Tracker) prune(now time.Time) {
	cutoff := now.Add(-RateWindow)
	i := 0
	for i < len(t.window) && !t.window[i].After(cutoff) {
		i++
	}
	if i > 0 {
		t.window = append(t.window[:0], t.window[i:]...)
	}
}
