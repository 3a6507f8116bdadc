package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/lac-hong-legacy/learning_hub/model"
	log "github.com/sirupsen/logrus"
)

const DefaultSyncInterval = 2 * time.Second

// PageRecorder is the part of the progress service a page session writes to.
type PageRecorder interface {
	VisitPage(pageID, path, title string) *model.PageProgress
	UpdatePageProgress(pageID string, update model.PageUpdate) (*model.PageProgress, bool)
	MarkPageComplete(pageID string) (*model.PageProgress, bool)
	Preferences() model.Preferences
}

type SessionOptions struct {
	SyncInterval time.Duration
	Clock        func() time.Time
}

// PageSession ties the trackers of one page view to the progress service. It
// forwards time deltas and scroll depth at most every SyncInterval and marks
// the page complete once both auto-complete thresholds are reached.
type PageSession struct {
	recorder PageRecorder
	page     model.PageDescriptor
	timer    *TimeTracker
	scroll   *ScrollTracker
	opts     SessionOptions

	mu            sync.Mutex
	prefs         model.Preferences
	completed     bool
	autoCompleted bool
	lastSync      time.Time
	syncedTime    time.Duration
	onComplete    func()
}

func NewPageSession(recorder PageRecorder, page model.PageDescriptor, timer *TimeTracker, scroll *ScrollTracker, opts SessionOptions) *PageSession {
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = DefaultSyncInterval
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &PageSession{
		recorder: recorder,
		page:     page,
		timer:    timer,
		scroll:   scroll,
		opts:     opts,
	}
}

func (s *PageSession) OnComplete(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

// Begin records the visit and starts the time tracker.
func (s *PageSession) Begin() {
	progress := s.recorder.VisitPage(s.page.ID, s.page.Path, s.page.Title)

	s.mu.Lock()
	s.prefs = s.recorder.Preferences()
	s.completed = progress != nil && progress.Completed
	s.lastSync = s.opts.Clock()
	s.mu.Unlock()

	s.timer.Start()
}

// Tick syncs when the sync interval has elapsed and checks auto-completion.
func (s *PageSession) Tick() {
	s.mu.Lock()
	due := s.opts.Clock().Sub(s.lastSync) >= s.opts.SyncInterval
	s.mu.Unlock()

	if due {
		s.Sync()
	}
	s.checkAutoComplete()
}

// Sync sends the time accumulated since the previous sync together with the
// max scroll depth.
func (s *PageSession) Sync() {
	spent := s.timer.TimeSpent()
	tracking := s.timer.IsTracking()
	maxDepth := s.scroll.MaxDepth()

	s.mu.Lock()
	delta := spent - s.syncedTime
	s.syncedTime = spent
	s.lastSync = s.opts.Clock()
	inProgress := tracking && !s.completed
	s.mu.Unlock()

	update := model.PageUpdate{
		ScrollDepth: &maxDepth,
		InProgress:  &inProgress,
	}
	if delta > 0 {
		ms := delta.Milliseconds()
		update.TimeSpent = &ms
	}

	page, ok := s.recorder.UpdatePageProgress(s.page.ID, update)
	if !ok {
		return
	}
	s.mu.Lock()
	s.completed = page.Completed
	s.mu.Unlock()
}

func (s *PageSession) thresholdsMet() bool {
	return s.timer.TimeSpent().Milliseconds() >= s.prefs.AutoCompleteTimeThreshold &&
		s.scroll.MaxDepth() >= s.prefs.AutoCompleteScrollThreshold
}

func (s *PageSession) checkAutoComplete() {
	s.mu.Lock()
	if !s.prefs.AutoComplete || s.completed || s.autoCompleted || !s.thresholdsMet() {
		s.mu.Unlock()
		return
	}
	s.autoCompleted = true
	fn := s.onComplete
	s.mu.Unlock()

	s.Sync()
	if _, ok := s.recorder.MarkPageComplete(s.page.ID); !ok {
		log.WithFields(log.Fields{"page_id": s.page.ID}).Warn("Auto-complete skipped for unknown page")
		return
	}

	s.mu.Lock()
	s.completed = true
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// ShowCompletionPrompt reports whether a manual completion control should be
// offered: either threshold 70% reached, or both 50% reached.
func (s *PageSession) ShowCompletionPrompt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return false
	}
	timeRatio, scrollRatio := 0.0, 0.0
	if s.prefs.AutoCompleteTimeThreshold > 0 {
		seconds := s.timer.TimeSpent().Milliseconds() / 1000
		timeRatio = float64(seconds) / (float64(s.prefs.AutoCompleteTimeThreshold) / 1000)
	}
	if s.prefs.AutoCompleteScrollThreshold > 0 {
		scrollRatio = float64(s.scroll.MaxDepth()) / float64(s.prefs.AutoCompleteScrollThreshold)
	}
	return timeRatio >= 0.7 || scrollRatio >= 0.7 || (timeRatio >= 0.5 && scrollRatio >= 0.5)
}

func (s *PageSession) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Run ticks until ctx is done, then ends the session.
func (s *PageSession) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.End()
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// End sends the final delta and stops the time tracker.
func (s *PageSession) End() {
	s.Sync()
	s.timer.Stop()
}
