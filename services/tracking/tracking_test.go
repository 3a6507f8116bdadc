package tracking

import (
	"sync"
	"testing"
	"time"

	"github.com/lac-hong-legacy/learning_hub/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTimeTracker(clock *fakeClock) *TimeTracker {
	opts := DefaultTimeTrackerOptions()
	opts.UpdateInterval = 0
	opts.Clock = clock.Now
	return NewTimeTracker(opts)
}

func TestTimeTrackerAccumulatesAcrossPause(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := newTestTimeTracker(clock)

	tracker.Start()
	clock.Advance(10 * time.Second)
	tracker.Pause()
	clock.Advance(time.Minute)

	if got := tracker.TimeSpent(); got != 10*time.Second {
		t.Fatalf("TimeSpent() after pause = %v, want 10s", got)
	}
	if tracker.IsTracking() {
		t.Fatalf("expected tracker paused")
	}

	tracker.Resume()
	clock.Advance(5 * time.Second)
	if got := tracker.TimeSpent(); got != 15*time.Second {
		t.Fatalf("TimeSpent() after resume = %v, want 15s", got)
	}
}

func TestTimeTrackerHiddenDoesNotDoubleCount(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := newTestTimeTracker(clock)

	tracker.Start()
	clock.Advance(4 * time.Second)
	tracker.SetVisible(false)
	tracker.SetVisible(false)
	clock.Advance(20 * time.Second)
	tracker.SetVisible(true)
	tracker.SetVisible(true)
	clock.Advance(3 * time.Second)

	if got := tracker.TimeSpent(); got != 7*time.Second {
		t.Fatalf("TimeSpent() = %v, want 7s", got)
	}
}

func TestTimeTrackerIgnoresVisibilityWhenDisabled(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	opts := DefaultTimeTrackerOptions()
	opts.UpdateInterval = 0
	opts.PauseWhenHidden = false
	opts.TrackOnlyWhenActive = false
	opts.Clock = clock.Now
	tracker := NewTimeTracker(opts)

	tracker.Start()
	tracker.SetVisible(false)
	clock.Advance(time.Minute)

	if got := tracker.TimeSpent(); got != time.Minute {
		t.Fatalf("TimeSpent() = %v, want 1m", got)
	}
}

func TestTimeTrackerStopsCountingWhenIdle(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := newTestTimeTracker(clock)

	tracker.Start()
	clock.Advance(10 * time.Second)
	tracker.RecordActivity()
	clock.Advance(2 * time.Minute)

	if got := tracker.TimeSpent(); got != 40*time.Second {
		t.Fatalf("TimeSpent() while idle = %v, want 40s", got)
	}
	if tracker.IsTracking() {
		t.Fatalf("expected idle tracker to be suspended")
	}

	tracker.RecordActivity()
	clock.Advance(5 * time.Second)
	if got := tracker.TimeSpent(); got != 45*time.Second {
		t.Fatalf("TimeSpent() after activity = %v, want 45s", got)
	}
}

func TestTimeTrackerReset(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := newTestTimeTracker(clock)

	tracker.Start()
	clock.Advance(8 * time.Second)
	tracker.Reset()
	clock.Advance(2 * time.Second)

	if got := tracker.TimeSpent(); got != 2*time.Second {
		t.Fatalf("TimeSpent() after reset = %v, want 2s", got)
	}
	if got := tracker.Formatted(); got != "2s" {
		t.Fatalf("Formatted() = %q, want 2s", got)
	}
}

func TestTimeTrackerStopKeepsTotal(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := newTestTimeTracker(clock)

	tracker.Start()
	clock.Advance(6 * time.Second)
	tracker.Stop()
	clock.Advance(time.Minute)

	if got := tracker.TimeSpent(); got != 6*time.Second {
		t.Fatalf("TimeSpent() after stop = %v, want 6s", got)
	}
}

func TestScrollDepth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    Viewport
		want int
	}{
		{name: "top", v: Viewport{ScrollTop: 0, DocumentHeight: 2000, ViewportHeight: 1000}, want: 0},
		{name: "middle", v: Viewport{ScrollTop: 500, DocumentHeight: 2000, ViewportHeight: 1000}, want: 50},
		{name: "bottom", v: Viewport{ScrollTop: 1000, DocumentHeight: 2000, ViewportHeight: 1000}, want: 100},
		{name: "overscroll", v: Viewport{ScrollTop: 1300, DocumentHeight: 2000, ViewportHeight: 1000}, want: 100},
		{name: "short page", v: Viewport{ScrollTop: 0, DocumentHeight: 800, ViewportHeight: 1000}, want: 0},
		{name: "rounding", v: Viewport{ScrollTop: 333, DocumentHeight: 2000, ViewportHeight: 1000}, want: 33},
	}
	for _, tc := range cases {
		if got := ScrollDepth(tc.v); got != tc.want {
			t.Fatalf("%s: ScrollDepth() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestScrollTrackerKeepsMaxDepth(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := NewScrollTracker(ScrollTrackerOptions{Clock: clock.Now})

	changes := 0
	tracker.OnChange(func(depth, maxDepth int) { changes++ })

	tracker.Observe(Viewport{ScrollTop: 850, DocumentHeight: 2000, ViewportHeight: 1000})
	tracker.Observe(Viewport{ScrollTop: 200, DocumentHeight: 2000, ViewportHeight: 1000})

	if tracker.Depth() != 20 || tracker.MaxDepth() != 85 {
		t.Fatalf("Depth()=%d MaxDepth()=%d, want 20 and 85", tracker.Depth(), tracker.MaxDepth())
	}

	tracker.Observe(Viewport{ScrollTop: 200, DocumentHeight: 2000, ViewportHeight: 1000})
	if changes != 2 {
		t.Fatalf("expected unchanged depth within a second to be skipped, got %d changes", changes)
	}

	tracker.Reset()
	if tracker.Depth() != 0 || tracker.MaxDepth() != 0 {
		t.Fatalf("expected reset depths, got %d/%d", tracker.Depth(), tracker.MaxDepth())
	}
}

func TestScrollTrackerBatchesFrames(t *testing.T) {
	t.Parallel()

	tracker := NewScrollTracker(ScrollTrackerOptions{FrameInterval: 5 * time.Millisecond})
	done := make(chan int, 4)
	tracker.OnChange(func(depth, _ int) { done <- depth })

	tracker.Observe(Viewport{ScrollTop: 100, DocumentHeight: 2000, ViewportHeight: 1000})
	tracker.Observe(Viewport{ScrollTop: 400, DocumentHeight: 2000, ViewportHeight: 1000})

	select {
	case depth := <-done:
		if depth != 40 {
			t.Fatalf("expected frame to use the latest viewport, got %d", depth)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("frame never committed")
	}
}

type recorderCall struct {
	kind   string
	update model.PageUpdate
}

type fakeRecorder struct {
	mu    sync.Mutex
	prefs model.Preferences
	page  *model.PageProgress
	calls []recorderCall
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{prefs: model.DefaultPreferences()}
}

func (r *fakeRecorder) VisitPage(pageID, path, title string) *model.PageProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.page = &model.PageProgress{PageID: pageID, Path: path, Title: title, InProgress: true, VisitCount: 1}
	r.calls = append(r.calls, recorderCall{kind: "visit"})
	return r.page.Clone()
}

func (r *fakeRecorder) UpdatePageProgress(pageID string, update model.PageUpdate) (*model.PageProgress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if update.TimeSpent != nil {
		r.page.TimeSpent += *update.TimeSpent
	}
	if update.ScrollDepth != nil && *update.ScrollDepth > r.page.MaxScrollDepth {
		r.page.MaxScrollDepth = *update.ScrollDepth
	}
	r.calls = append(r.calls, recorderCall{kind: "update", update: update})
	return r.page.Clone(), true
}

func (r *fakeRecorder) MarkPageComplete(pageID string) (*model.PageProgress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.page.Completed = true
	r.page.InProgress = false
	r.calls = append(r.calls, recorderCall{kind: "complete"})
	return r.page.Clone(), true
}

func (r *fakeRecorder) Preferences() model.Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prefs
}

func (r *fakeRecorder) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func newTestSession(clock *fakeClock, recorder PageRecorder) (*PageSession, *TimeTracker, *ScrollTracker) {
	timer := newTestTimeTracker(clock)
	scroll := NewScrollTracker(ScrollTrackerOptions{Clock: clock.Now})
	page, _ := model.FindPage("s3-storage")
	session := NewPageSession(recorder, page, timer, scroll, SessionOptions{Clock: clock.Now})
	return session, timer, scroll
}

func TestPageSessionSendsDeltas(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	recorder := newFakeRecorder()
	session, timer, _ := newTestSession(clock, recorder)

	session.Begin()
	for i := 0; i < 5; i++ {
		clock.Advance(2 * time.Second)
		timer.RecordActivity()
		session.Tick()
	}

	if got := recorder.page.TimeSpent; got != 10000 {
		t.Fatalf("expected 10s recorded across syncs, got %dms", got)
	}
	if got := recorder.count("update"); got != 5 {
		t.Fatalf("expected 5 updates, got %d", got)
	}
}

func TestPageSessionThrottlesSync(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	recorder := newFakeRecorder()
	session, _, _ := newTestSession(clock, recorder)

	session.Begin()
	clock.Advance(500 * time.Millisecond)
	session.Tick()
	clock.Advance(500 * time.Millisecond)
	session.Tick()

	if got := recorder.count("update"); got != 0 {
		t.Fatalf("expected no update before the sync interval, got %d", got)
	}
}

func TestPageSessionAutoCompletesOnce(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	recorder := newFakeRecorder()
	session, timer, scroll := newTestSession(clock, recorder)

	completions := 0
	session.OnComplete(func() { completions++ })
	session.Begin()

	scroll.Observe(Viewport{ScrollTop: 850, DocumentHeight: 2000, ViewportHeight: 1000})
	for i := 0; i < 20; i++ {
		clock.Advance(2 * time.Second)
		timer.RecordActivity()
		session.Tick()
	}

	if got := recorder.count("complete"); got != 1 {
		t.Fatalf("expected exactly one completion, got %d", got)
	}
	if completions != 1 || !session.Completed() {
		t.Fatalf("expected completion callback once, got %d", completions)
	}
	if session.ShowCompletionPrompt() {
		t.Fatalf("expected no prompt on a completed page")
	}
}

func TestPageSessionRespectsAutoCompletePreference(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	recorder := newFakeRecorder()
	recorder.prefs.AutoComplete = false
	session, timer, scroll := newTestSession(clock, recorder)

	session.Begin()
	scroll.Observe(Viewport{ScrollTop: 1000, DocumentHeight: 2000, ViewportHeight: 1000})
	for i := 0; i < 20; i++ {
		clock.Advance(2 * time.Second)
		timer.RecordActivity()
		session.Tick()
	}

	if got := recorder.count("complete"); got != 0 {
		t.Fatalf("expected no auto completion, got %d", got)
	}
	if !session.ShowCompletionPrompt() {
		t.Fatalf("expected manual completion prompt")
	}
}

func TestPageSessionCompletionPrompt(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	recorder := newFakeRecorder()
	session, timer, scroll := newTestSession(clock, recorder)
	session.Begin()

	if session.ShowCompletionPrompt() {
		t.Fatalf("expected no prompt at start")
	}

	clock.Advance(15 * time.Second)
	timer.RecordActivity()
	scroll.Observe(Viewport{ScrollTop: 400, DocumentHeight: 2000, ViewportHeight: 1000})
	if !session.ShowCompletionPrompt() {
		t.Fatalf("expected prompt when both ratios reach 50%%")
	}
}
