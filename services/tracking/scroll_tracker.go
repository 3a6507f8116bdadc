package tracking

import (
	"math"
	"sync"
	"time"
)

const (
	// DefaultFrameInterval approximates one animation frame.
	DefaultFrameInterval = 16 * time.Millisecond

	scrollRefreshInterval = time.Second
)

// Viewport is the scroll geometry reported with a scroll or resize event.
type Viewport struct {
	ScrollTop      float64 `json:"scrollTop"`
	DocumentHeight float64 `json:"documentHeight"`
	ViewportHeight float64 `json:"viewportHeight"`
}

// ScrollDepth is the percentage of the scrollable height above the viewport
// top, rounded and clamped to 0..100.
func ScrollDepth(v Viewport) int {
	scrollable := v.DocumentHeight - v.ViewportHeight
	if scrollable <= 0 {
		return 0
	}
	depth := math.Round(v.ScrollTop / scrollable * 100)
	return int(math.Min(100, math.Max(0, depth)))
}

type ScrollTrackerOptions struct {
	// FrameInterval batches observations into one computation per frame.
	// Zero computes synchronously on every observation.
	FrameInterval time.Duration
	Clock         func() time.Time
}

type ScrollTracker struct {
	opts ScrollTrackerOptions

	mu           sync.Mutex
	latest       Viewport
	framePending bool
	frame        *time.Timer
	depth        int
	maxDepth     int
	lastCommit   time.Time
	onChange     func(depth, maxDepth int)
}

func NewScrollTracker(opts ScrollTrackerOptions) *ScrollTracker {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &ScrollTracker{opts: opts}
}

// Observe records the geometry of a scroll or resize event.
func (s *ScrollTracker) Observe(v Viewport) {
	s.mu.Lock()
	s.latest = v
	if s.opts.FrameInterval <= 0 {
		depth, maxDepth, fn, changed := s.commitLocked()
		s.mu.Unlock()
		if changed && fn != nil {
			fn(depth, maxDepth)
		}
		return
	}
	if s.framePending {
		s.mu.Unlock()
		return
	}
	s.framePending = true
	s.frame = time.AfterFunc(s.opts.FrameInterval, s.runFrame)
	s.mu.Unlock()
}

func (s *ScrollTracker) runFrame() {
	s.mu.Lock()
	if !s.framePending {
		s.mu.Unlock()
		return
	}
	s.framePending = false
	s.frame = nil
	depth, maxDepth, fn, changed := s.commitLocked()
	s.mu.Unlock()

	if changed && fn != nil {
		fn(depth, maxDepth)
	}
}

// commitLocked applies the latest viewport when the depth moved or the last
// commit is older than a second.
func (s *ScrollTracker) commitLocked() (int, int, func(int, int), bool) {
	now := s.opts.Clock()
	current := ScrollDepth(s.latest)

	if current == s.depth && !s.lastCommit.IsZero() && now.Sub(s.lastCommit) <= scrollRefreshInterval {
		return s.depth, s.maxDepth, s.onChange, false
	}
	s.depth = current
	if current > s.maxDepth {
		s.maxDepth = current
	}
	s.lastCommit = now
	return s.depth, s.maxDepth, s.onChange, true
}

func (s *ScrollTracker) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}

func (s *ScrollTracker) MaxDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxDepth
}

func (s *ScrollTracker) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame != nil {
		s.frame.Stop()
		s.frame = nil
	}
	s.framePending = false
	s.latest = Viewport{}
	s.depth = 0
	s.maxDepth = 0
	s.lastCommit = time.Time{}
}

func (s *ScrollTracker) OnChange(fn func(depth, maxDepth int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}
