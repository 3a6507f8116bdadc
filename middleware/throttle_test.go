package middleware

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestAllowPerKeyInterval(t *testing.T) {
	t.Parallel()

	clock := &stepClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	throttle := NewThrottleMiddleware(2*time.Second, clock.Now)

	if ok, _ := throttle.Allow("a"); !ok {
		t.Fatalf("first update should pass")
	}
	if ok, info := throttle.Allow("a"); ok || info.BlockedUntil == nil {
		t.Fatalf("second update inside the interval should be blocked, got ok=%v info=%+v", ok, info)
	}
	if ok, _ := throttle.Allow("b"); !ok {
		t.Fatalf("other keys are throttled independently")
	}

	clock.Advance(2 * time.Second)
	if ok, _ := throttle.Allow("a"); !ok {
		t.Fatalf("update after the interval should pass")
	}
}

func TestCleanupDropsExpiredKeys(t *testing.T) {
	t.Parallel()

	clock := &stepClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	throttle := NewThrottleMiddleware(time.Second, clock.Now)

	throttle.Allow("a")
	clock.Advance(500 * time.Millisecond)
	throttle.Allow("b")
	clock.Advance(time.Second)

	if removed := throttle.Cleanup(); removed != 1 {
		t.Fatalf("Cleanup() removed %d, want 1", removed)
	}
}

func TestPageSyncThrottleRoute(t *testing.T) {
	t.Parallel()

	clock := &stepClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	throttle := NewThrottleMiddleware(2*time.Second, clock.Now)

	app := fiber.New()
	app.Patch("/pages/:pageId", throttle.PageSyncThrottle(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	status := func(path string) int {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPatch, path, nil))
		if err != nil {
			t.Fatalf("app.Test(%s) error = %v", path, err)
		}
		return resp.StatusCode
	}

	if got := status("/pages/s3-storage"); got != fiber.StatusNoContent {
		t.Fatalf("first update status = %d", got)
	}
	if got := status("/pages/s3-storage"); got != fiber.StatusTooManyRequests {
		t.Fatalf("throttled update status = %d, want 429", got)
	}
	if got := status("/pages/cloudfront"); got != fiber.StatusNoContent {
		t.Fatalf("other page status = %d", got)
	}
}
