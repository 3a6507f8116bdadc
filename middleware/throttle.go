package middleware

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learning_hub/dto"
	"github.com/lac-hong-legacy/learning_hub/services/tracking"
	"github.com/lac-hong-legacy/learning_hub/shared"
	log "github.com/sirupsen/logrus"
)

// ThrottleMiddleware limits progress updates to one per page and client
// within the sync interval. Rejected clients keep their delta and resend it
// with the next update.
type ThrottleMiddleware struct {
	context.DefaultService

	interval time.Duration
	clock    func() time.Time

	mutex sync.Mutex
	last  map[string]time.Time

	closed chan struct{}
}

const THROTTLE_MIDDLEWARE_SVC = "throttle"

func NewThrottleMiddleware(interval time.Duration, clock func() time.Time) *ThrottleMiddleware {
	svc := &ThrottleMiddleware{}
	svc.init(interval, clock)
	return svc
}

func (svc *ThrottleMiddleware) init(interval time.Duration, clock func() time.Time) {
	if interval <= 0 {
		interval = tracking.DefaultSyncInterval
	}
	if clock == nil {
		clock = time.Now
	}
	svc.interval = interval
	svc.clock = clock
	svc.last = make(map[string]time.Time)
}

func (svc *ThrottleMiddleware) Id() string {
	return THROTTLE_MIDDLEWARE_SVC
}

func (svc *ThrottleMiddleware) Configure(ctx *context.Context) error {
	var interval time.Duration
	if v, err := strconv.Atoi(os.Getenv("PAGE_SYNC_INTERVAL_MS")); err == nil && v > 0 {
		interval = time.Duration(v) * time.Millisecond
	}
	svc.init(interval, time.Now)
	return svc.DefaultService.Configure(ctx)
}

func (svc *ThrottleMiddleware) Start() error {
	svc.closed = make(chan struct{})
	svc.StartCleanupJob(time.Hour)
	return nil
}

func (svc *ThrottleMiddleware) Shutdown() {
	if svc.closed != nil {
		close(svc.closed)
	}
}

// Allow records an update for key and reports whether it falls outside the
// interval of the previous accepted one.
func (svc *ThrottleMiddleware) Allow(key string) (bool, *dto.RateLimitInfo) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	now := svc.clock()
	if last, ok := svc.last[key]; ok {
		if next := last.Add(svc.interval); now.Before(next) {
			return false, &dto.RateLimitInfo{
				Allowed:      false,
				Remaining:    0,
				ResetTime:    &next,
				BlockedUntil: &next,
			}
		}
	}

	svc.last[key] = now
	reset := now.Add(svc.interval)
	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: 0,
		ResetTime: &reset,
	}
}

// PageSyncThrottle guards the page update route, keyed by client IP and the
// pageId route param.
func (svc *ThrottleMiddleware) PageSyncThrottle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, info := svc.Allow(c.IP() + "|" + c.Params("pageId"))

		if info.ResetTime != nil {
			c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

		if !allowed {
			retryAfter := info.BlockedUntil.Sub(svc.clock())
			if retryAfter < time.Second {
				retryAfter = time.Second
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retryAfter.Seconds())))
			return shared.ResponseJSON(c, fiber.StatusTooManyRequests, "Too many updates for this page", info)
		}

		return c.Next()
	}
}

// Cleanup drops keys whose interval has elapsed and returns how many were
// removed.
func (svc *ThrottleMiddleware) Cleanup() int {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	cutoff := svc.clock().Add(-svc.interval)
	removed := 0
	for key, last := range svc.last {
		if last.Before(cutoff) {
			delete(svc.last, key)
			removed++
		}
	}
	return removed
}

func (svc *ThrottleMiddleware) StartCleanupJob(every time.Duration) {
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-svc.closed:
				return
			case <-ticker.C:
				if removed := svc.Cleanup(); removed > 0 {
					log.Printf("Throttle cleanup removed %d entries", removed)
				}
			}
		}
	}()
}
