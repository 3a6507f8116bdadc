package services

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learning_hub/model"
	log "github.com/sirupsen/logrus"
)

const (
	NOTIFICATION_SVC = "notification_svc"

	DefaultNotificationDisplay = 5 * time.Second
	DefaultNotificationGap     = 500 * time.Millisecond
)

// NotificationService shows unlocked achievements one at a time. Each
// achievement is shown at most once per process.
type NotificationService struct {
	context.DefaultService

	display time.Duration
	gap     time.Duration

	mu       sync.Mutex
	queue    []model.Achievement
	current  *model.Achievement
	shown    map[string]bool
	timer    *time.Timer
	timerGen uint64
	onShow   []func(model.Achievement)
}

func NewNotificationService(display, gap time.Duration) *NotificationService {
	svc := &NotificationService{}
	svc.init(display, gap)
	return svc
}

func (svc *NotificationService) init(display, gap time.Duration) {
	if display <= 0 {
		display = DefaultNotificationDisplay
	}
	if gap <= 0 {
		gap = DefaultNotificationGap
	}
	svc.display = display
	svc.gap = gap
	if svc.shown == nil {
		svc.shown = make(map[string]bool)
	}
}

func (svc *NotificationService) Id() string {
	return NOTIFICATION_SVC
}

func (svc *NotificationService) Configure(ctx *context.Context) error {
	svc.init(envMillis("NOTIFICATION_DISPLAY_MS"), envMillis("NOTIFICATION_GAP_MS"))
	return svc.DefaultService.Configure(ctx)
}

func envMillis(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "value": v}).Warn("Ignoring invalid duration")
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func (svc *NotificationService) Start() error {
	return nil
}

func (svc *NotificationService) Shutdown() {
	svc.Clear()
}

// OnShow registers fn to be called whenever an achievement becomes visible.
func (svc *NotificationService) OnShow(fn func(model.Achievement)) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.onShow = append(svc.onShow, fn)
}

// Trigger queues a for display. It reports false when a was already shown
// or queued during this process.
func (svc *NotificationService) Trigger(a model.Achievement) bool {
	svc.mu.Lock()
	if svc.shown[a.ID] {
		svc.mu.Unlock()
		return false
	}
	svc.shown[a.ID] = true

	if svc.current != nil {
		svc.queue = append(svc.queue, a)
		svc.mu.Unlock()
		return true
	}

	handlers := svc.showLocked(a)
	svc.mu.Unlock()

	notify(handlers, a)
	return true
}

func (svc *NotificationService) stopTimerLocked() {
	if svc.timer != nil {
		svc.timer.Stop()
		svc.timer = nil
	}
	svc.timerGen++
}

func (svc *NotificationService) showLocked(a model.Achievement) []func(model.Achievement) {
	svc.stopTimerLocked()
	shown := a.Clone()
	svc.current = &shown

	gen := svc.timerGen
	svc.timer = time.AfterFunc(svc.display, func() {
		svc.expire(gen)
	})
	return append([]func(model.Achievement){}, svc.onShow...)
}

func notify(handlers []func(model.Achievement), a model.Achievement) {
	for _, fn := range handlers {
		fn(a)
	}
}

// Dismiss hides the visible achievement. The next queued one appears after
// the gap.
func (svc *NotificationService) Dismiss() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.dismissLocked()
}

func (svc *NotificationService) dismissLocked() {
	if svc.current == nil {
		return
	}
	svc.current = nil
	svc.stopTimerLocked()

	gen := svc.timerGen
	svc.timer = time.AfterFunc(svc.gap, func() {
		svc.advance(gen)
	})
}

func (svc *NotificationService) expire(gen uint64) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if gen != svc.timerGen {
		return
	}
	svc.dismissLocked()
}

func (svc *NotificationService) advance(gen uint64) {
	svc.mu.Lock()
	if gen != svc.timerGen || svc.current != nil || len(svc.queue) == 0 {
		svc.mu.Unlock()
		return
	}
	next := svc.queue[0]
	svc.queue = svc.queue[1:]
	handlers := svc.showLocked(next)
	svc.mu.Unlock()

	notify(handlers, next)
}

// Clear drops the visible and queued achievements.
func (svc *NotificationService) Clear() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.stopTimerLocked()
	svc.queue = nil
	svc.current = nil
}

func (svc *NotificationService) Current() *model.Achievement {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.current == nil {
		return nil
	}
	c := svc.current.Clone()
	return &c
}

func (svc *NotificationService) QueueLength() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.queue)
}
