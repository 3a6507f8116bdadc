// Package tracking measures engaged reading time and scroll depth for one
// page view and turns them into progress updates.
package tracking

import (
	"sync"
	"time"

	"github.com/lac-hong-legacy/learning_hub/services/calculator"
)

type TimeTrackerOptions struct {
	// UpdateInterval is the period of OnSample callbacks. Zero disables them.
	UpdateInterval      time.Duration
	PauseWhenHidden     bool
	TrackOnlyWhenActive bool
	InactivityWindow    time.Duration
	Clock               func() time.Time
}

func DefaultTimeTrackerOptions() TimeTrackerOptions {
	return TimeTrackerOptions{
		UpdateInterval:      time.Second,
		PauseWhenHidden:     true,
		TrackOnlyWhenActive: true,
		InactivityWindow:    30 * time.Second,
		Clock:               time.Now,
	}
}

// TimeTracker accumulates time while the page is tracked, visible and in
// use. Every suspension folds the running segment into the total.
type TimeTracker struct {
	opts TimeTrackerOptions

	mu           sync.Mutex
	started      bool
	paused       bool
	hidden       bool
	idle         bool
	running      bool
	segmentStart time.Time
	accumulated  time.Duration
	lastActivity time.Time

	onSample func(time.Duration)
	stop     chan struct{}
}

func NewTimeTracker(opts TimeTrackerOptions) *TimeTracker {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.InactivityWindow <= 0 {
		opts.InactivityWindow = 30 * time.Second
	}
	return &TimeTracker{opts: opts}
}

func (t *TimeTracker) shouldRun() bool {
	if !t.started || t.paused {
		return false
	}
	if t.opts.PauseWhenHidden && t.hidden {
		return false
	}
	if t.opts.TrackOnlyWhenActive && t.idle {
		return false
	}
	return true
}

func (t *TimeTracker) suspend(at time.Time) {
	if !t.running {
		return
	}
	if at.After(t.segmentStart) {
		t.accumulated += at.Sub(t.segmentStart)
	}
	t.running = false
}

func (t *TimeTracker) apply(now time.Time) {
	should := t.shouldRun()
	switch {
	case should && !t.running:
		t.running = true
		t.segmentStart = now
	case !should && t.running:
		t.suspend(now)
	}
}

// checkIdle suspends a running segment at the end of the inactivity window
// once that window has elapsed without activity.
func (t *TimeTracker) checkIdle(now time.Time) {
	if !t.opts.TrackOnlyWhenActive || t.idle || !t.started {
		return
	}
	deadline := t.lastActivity.Add(t.opts.InactivityWindow)
	if !now.After(deadline) {
		return
	}
	if deadline.Before(t.segmentStart) {
		deadline = t.segmentStart
	}
	t.suspend(deadline)
	t.idle = true
}

func (t *TimeTracker) markActive(now time.Time) {
	t.lastActivity = now
	t.idle = false
}

func (t *TimeTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return
	}
	now := t.opts.Clock()
	t.started = true
	t.paused = false
	t.markActive(now)
	t.apply(now)

	if t.opts.UpdateInterval > 0 {
		t.stop = make(chan struct{})
		go t.loop(t.stop)
	}
}

func (t *TimeTracker) loop(stop chan struct{}) {
	ticker := time.NewTicker(t.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			spent := t.TimeSpent()
			t.mu.Lock()
			fn := t.onSample
			t.mu.Unlock()
			if fn != nil {
				fn(spent)
			}
		}
	}
}

func (t *TimeTracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.Clock()
	t.checkIdle(now)
	t.paused = true
	t.apply(now)
}

func (t *TimeTracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}
	now := t.opts.Clock()
	t.checkIdle(now)
	t.paused = false
	t.markActive(now)
	t.apply(now)
}

// Reset zeroes the total. A running segment restarts now.
func (t *TimeTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.Clock()
	t.accumulated = 0
	if t.running {
		t.segmentStart = now
	}
}

func (t *TimeTracker) SetVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.Clock()
	t.checkIdle(now)
	t.hidden = !visible
	if visible {
		t.markActive(now)
	}
	t.apply(now)
}

// RecordActivity marks user input such as a scroll, click or key press.
func (t *TimeTracker) RecordActivity() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.Clock()
	t.checkIdle(now)
	t.markActive(now)
	t.apply(now)
}

func (t *TimeTracker) TimeSpent() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.Clock()
	t.checkIdle(now)
	total := t.accumulated
	if t.running && now.After(t.segmentStart) {
		total += now.Sub(t.segmentStart)
	}
	return total
}

func (t *TimeTracker) IsTracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.checkIdle(t.opts.Clock())
	return t.running
}

func (t *TimeTracker) Formatted() string {
	return calculator.FormatDuration(t.TimeSpent().Milliseconds())
}

func (t *TimeTracker) OnSample(fn func(time.Duration)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSample = fn
}

// Stop ends tracking. The accumulated total stays readable.
func (t *TimeTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}
	now := t.opts.Clock()
	t.checkIdle(now)
	t.suspend(now)
	t.started = false
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
