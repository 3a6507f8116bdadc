package services

import (
	"sync"
	"testing"
	"time"

	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/services/storage"
	"github.com/lac-hong-legacy/learning_hub/services/tracking"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type progressFixture struct {
	clock         *testClock
	store         *storage.ProgressStorage
	notifications *NotificationService
	svc           *ProgressService
}

func newProgressFixture(t *testing.T, backend storage.Backend, notifier storage.Notifier) *progressFixture {
	t.Helper()

	clock := newTestClock()
	store := storage.New(storage.Options{Backend: backend, Notifier: notifier, Clock: clock.Now})
	notifications := NewNotificationService(time.Hour, time.Millisecond)
	svc := NewProgressService(store, notifications, clock.Now)

	t.Cleanup(func() {
		svc.Shutdown()
		notifications.Clear()
	})
	return &progressFixture{clock: clock, store: store, notifications: notifications, svc: svc}
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func hasAchievement(list []model.Achievement, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}

func TestVisitPageCreatesRecord(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	page := f.svc.VisitPage("s3-storage", "/learn/s3-storage", "S3 Storage")

	if page.VisitCount != 1 || page.Completed {
		t.Fatalf("VisitPage() = %+v, want visitCount=1 completed=false", page)
	}
	got, ok := f.svc.GetPageProgress("s3-storage")
	if !ok || got.VisitCount != 1 {
		t.Fatalf("GetPageProgress() = %+v, %v", got, ok)
	}

	f.svc.VisitPage("s3-storage", "/learn/s3-storage", "S3 Storage")
	if got, _ := f.svc.GetPageProgress("s3-storage"); got.VisitCount != 2 {
		t.Fatalf("expected visitCount=2 after revisit, got %d", got.VisitCount)
	}
}

func TestUpdateThenAutoCompleteUnlocksFirstPage(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	f.svc.VisitPage("s3-storage", "/learn/s3-storage", "S3 Storage")

	if _, ok := f.svc.UpdatePageProgress("s3-storage", model.PageUpdate{
		TimeSpent:   int64Ptr(31000),
		ScrollDepth: intPtr(85),
	}); !ok {
		t.Fatalf("UpdatePageProgress() ok = false")
	}

	page, ok := f.svc.EvaluateAutoComplete("s3-storage")
	if !ok || !page.Completed {
		t.Fatalf("EvaluateAutoComplete() = %+v, %v; want completed", page, ok)
	}

	progress := f.svc.GetProgress()
	if progress.Stats.PagesCompleted != 1 {
		t.Fatalf("pagesCompleted = %d, want 1", progress.Stats.PagesCompleted)
	}
	if !hasAchievement(progress.Achievements, model.AchievementFirstPage) {
		t.Fatalf("expected first-page unlocked, got %+v", progress.Achievements)
	}
	if !hasAchievement(f.svc.GetNewAchievements(), model.AchievementFirstPage) {
		t.Fatalf("expected first-page among new achievements")
	}
	if current := f.notifications.Current(); current == nil || current.ID != model.AchievementFirstPage {
		t.Fatalf("expected first-page notification, got %+v", current)
	}

	f.svc.ClearNewAchievements()
	if got := f.svc.GetNewAchievements(); len(got) != 0 {
		t.Fatalf("expected cleared new achievements, got %d", len(got))
	}

	if _, ok := f.svc.EvaluateAutoComplete("s3-storage"); ok {
		t.Fatalf("expected no second completion")
	}
}

func TestAutoCompleteBelowThreshold(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	f.svc.VisitPage("s3-storage", "/learn/s3-storage", "S3 Storage")
	f.svc.UpdatePageProgress("s3-storage", model.PageUpdate{TimeSpent: int64Ptr(31000), ScrollDepth: intPtr(60)})

	if _, ok := f.svc.EvaluateAutoComplete("s3-storage"); ok {
		t.Fatalf("expected scroll threshold to block completion")
	}
	if !f.svc.ShowCompletionPrompt("s3-storage") {
		t.Fatalf("expected manual completion prompt")
	}
}

func TestPageSessionDrivesProgressService(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)

	timerOpts := tracking.DefaultTimeTrackerOptions()
	timerOpts.UpdateInterval = 0
	timerOpts.Clock = f.clock.Now
	timer := tracking.NewTimeTracker(timerOpts)
	scroll := tracking.NewScrollTracker(tracking.ScrollTrackerOptions{Clock: f.clock.Now})

	page, _ := model.FindPage("s3-storage")
	session := tracking.NewPageSession(f.svc, page, timer, scroll, tracking.SessionOptions{Clock: f.clock.Now})
	session.Begin()

	scroll.Observe(tracking.Viewport{ScrollTop: 850, DocumentHeight: 2000, ViewportHeight: 1000})
	for i := 0; i < 16; i++ {
		f.clock.Advance(2 * time.Second)
		timer.RecordActivity()
		session.Tick()
	}

	got, ok := f.svc.GetPageProgress("s3-storage")
	if !ok || !got.Completed {
		t.Fatalf("expected page completed by the session, got %+v", got)
	}
	if got.TimeSpent < 30000 || got.MaxScrollDepth != 85 {
		t.Fatalf("unexpected recorded totals: time=%d scroll=%d", got.TimeSpent, got.MaxScrollDepth)
	}
	if !hasAchievement(f.svc.UnlockedAchievements(), model.AchievementFirstPage) {
		t.Fatalf("expected first-page unlocked")
	}
}

func TestUpdateUnknownPageIsNoop(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	if _, ok := f.svc.UpdatePageProgress("lambda-functions", model.PageUpdate{TimeSpent: int64Ptr(1000)}); ok {
		t.Fatalf("expected update of an unvisited page to be rejected")
	}
	if _, ok := f.svc.MarkPageComplete("lambda-functions"); ok {
		t.Fatalf("expected completion of an unvisited page to be rejected")
	}
	if len(f.svc.GetProgress().Pages) != 0 {
		t.Fatalf("expected no page records")
	}
}

func TestMarkPageIncomplete(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	f.svc.VisitPage("aws-basics", "/learn/aws-basics", "Using AWS Products")
	f.svc.MarkPageComplete("aws-basics")

	page, ok := f.svc.MarkPageIncomplete("aws-basics")
	if !ok || page.Completed || !page.InProgress || page.CompletedAt != nil {
		t.Fatalf("MarkPageIncomplete() = %+v", page)
	}
	if f.svc.OverallCompletion() != 0 {
		t.Fatalf("expected overall completion back to 0, got %d", f.svc.OverallCompletion())
	}
	if !hasAchievement(f.svc.UnlockedAchievements(), model.AchievementFirstPage) {
		t.Fatalf("expected first-page to stay unlocked")
	}
}

func TestResetSection(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	f.svc.VisitPage("aws-basics", "/learn/aws-basics", "Using AWS Products")
	f.svc.UpdatePageProgress("aws-basics", model.PageUpdate{TimeSpent: int64Ptr(5000), ScrollDepth: intPtr(50)})
	f.svc.MarkPageComplete("aws-basics")
	f.svc.VisitPage("s3-storage", "/learn/s3-storage", "S3 Storage")
	f.svc.MarkPageComplete("s3-storage")

	if f.svc.ResetSection("no-such-section") {
		t.Fatalf("expected unknown section to be rejected")
	}
	if !f.svc.ResetSection("main-navigation") {
		t.Fatalf("ResetSection() = false")
	}

	page, _ := f.svc.GetPageProgress("aws-basics")
	if page.Completed || page.TimeSpent != 0 || page.MaxScrollDepth != 0 || page.CompletedAt != nil {
		t.Fatalf("expected reset page, got %+v", page)
	}
	if page.VisitCount != 1 {
		t.Fatalf("expected visit count kept, got %d", page.VisitCount)
	}
	if other, _ := f.svc.GetPageProgress("s3-storage"); !other.Completed {
		t.Fatalf("expected pages outside the section untouched")
	}
	section, ok := f.svc.SectionProgress("main-navigation")
	if !ok || section.CompletedCount != 0 || section.TotalCount != 5 {
		t.Fatalf("SectionProgress() = %+v, %v", section, ok)
	}
	if !hasAchievement(f.svc.UnlockedAchievements(), model.AchievementFirstPage) {
		t.Fatalf("expected achievements kept after section reset")
	}
}

func TestResetProgressClearsStorage(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	f.svc.VisitPage("aws-basics", "/learn/aws-basics", "Using AWS Products")
	f.store.Flush()

	f.svc.ResetProgress()
	if len(f.svc.GetProgress().Pages) != 0 {
		t.Fatalf("expected empty progress after reset")
	}
	if f.store.HasPending() || f.svc.StorageInfo().DataExists {
		t.Fatalf("expected storage cleared, info=%+v", f.svc.StorageInfo())
	}
}

func TestMutationsAreDebounced(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	f.svc.VisitPage("aws-basics", "/learn/aws-basics", "Using AWS Products")
	f.svc.UpdatePageProgress("aws-basics", model.PageUpdate{TimeSpent: int64Ptr(2000)})

	if !f.store.HasPending() {
		t.Fatalf("expected a pending debounced save")
	}
	if f.svc.StorageInfo().DataExists {
		t.Fatalf("expected nothing written before the debounce delay")
	}

	f.store.Flush()
	if got := f.store.Load().Pages["aws-basics"]; got == nil || got.TimeSpent != 2000 {
		t.Fatalf("expected latest state written on flush, got %+v", got)
	}
}

func TestTwoInstancesStayInSync(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemoryBackend()
	notifier := storage.NewMemoryNotifier()
	tabA := newProgressFixture(t, backend, notifier)
	tabB := newProgressFixture(t, backend, notifier)

	changes := make(chan *model.UserProgress, 4)
	t.Cleanup(tabB.svc.Subscribe(func(p *model.UserProgress) { changes <- p }))

	tabA.svc.VisitPage("cloudfront", "/learn/cloudfront", "CloudFront")
	tabA.svc.MarkPageComplete("cloudfront")
	tabA.store.Flush()

	page, ok := tabB.svc.GetPageProgress("cloudfront")
	if !ok || !page.Completed {
		t.Fatalf("expected tab B to see the page completed by tab A, got %+v", page)
	}

	select {
	case p := <-changes:
		if p.Pages["cloudfront"] == nil {
			t.Fatalf("expected listener snapshot to contain the page")
		}
	default:
		t.Fatalf("expected tab B listeners to be notified")
	}
}

func TestExportImportBetweenInstances(t *testing.T) {
	t.Parallel()

	source := newProgressFixture(t, nil, nil)
	source.svc.VisitPage("route-53", "/learn/route-53", "Route 53")
	source.svc.MarkPageComplete("route-53")

	export, ok := source.svc.ExportData()
	if !ok {
		t.Fatalf("ExportData() ok = false")
	}
	if export.Progress.Pages["route-53"] == nil {
		t.Fatalf("expected export to include pending changes")
	}

	target := newProgressFixture(t, nil, nil)
	target.svc.VisitPage("about", "/about", "About")
	if !target.svc.ImportData(export) {
		t.Fatalf("ImportData() = false")
	}

	progress := target.svc.GetProgress()
	if progress.Pages["route-53"] == nil || !progress.Pages["route-53"].Completed {
		t.Fatalf("expected imported page, got %+v", progress.Pages)
	}
	if progress.Pages["about"] != nil {
		t.Fatalf("expected import to replace the previous document")
	}
	if len(target.svc.GetNewAchievements()) != 0 {
		t.Fatalf("expected new achievements cleared by import")
	}

	export.Metadata.Checksum = "00"
	if target.svc.ImportData(export) {
		t.Fatalf("expected tampered export to be rejected")
	}
}

func TestRefreshProgressRecomputesStreak(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	f.svc.VisitPage("aws-basics", "/learn/aws-basics", "Using AWS Products")
	f.svc.MarkPageComplete("aws-basics")
	if got := f.svc.GetProgress().Stats.LearningStreak.CurrentStreak; got != 1 {
		t.Fatalf("currentStreak = %d, want 1", got)
	}

	f.clock.Advance(72 * time.Hour)
	f.svc.RefreshProgress()

	stats := f.svc.GetProgress().Stats
	if stats.LearningStreak.CurrentStreak != 0 || stats.LearningStreak.LongestStreak != 1 {
		t.Fatalf("unexpected streak after refresh: %+v", stats.LearningStreak)
	}
}

func TestRecommendations(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t, nil, nil)
	recs := f.svc.GetRecommendations("")
	if len(recs) != 3 || recs[0].Path != "/learn" {
		t.Fatalf("expected foundation recommendations, got %+v", recs)
	}
}
