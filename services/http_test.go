package services

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learning_hub/dto"
	"github.com/lac-hong-legacy/learning_hub/middleware"
	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/services/handlers"
	"github.com/lac-hong-legacy/learning_hub/shared"
)

func newTestApp(t *testing.T) (*fiber.App, *progressFixture) {
	t.Helper()

	f := newProgressFixture(t, nil, nil)
	app := fiber.New(fiber.Config{
		ErrorHandler: shared.ErrorHandler,
		JSONEncoder:  shared.Marshal,
		JSONDecoder:  shared.Unmarshal,
	})
	RegisterRoutes(app.Group("/api/v1"),
		handlers.NewProgressHandler(f.svc, f.notifications),
		handlers.NewArchiveHandler(f.svc, nil),
		middleware.NewThrottleMiddleware(time.Millisecond, f.clock.Now),
	)
	return app, f
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := shared.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return resp.StatusCode
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func TestPageRoutesVisitUpdateAndComplete(t *testing.T) {
	t.Parallel()

	app, f := newTestApp(t)

	var visited envelope[model.PageProgress]
	status := doRequest(t, app, fiber.MethodPost, "/api/v1/pages/s3-storage/visit",
		`{"path":"/learn/s3-storage","title":"S3 Storage"}`, &visited)
	if status != fiber.StatusOK || visited.Data.VisitCount != 1 {
		t.Fatalf("visit: status %d, page %+v", status, visited.Data)
	}

	f.clock.Advance(time.Second)
	var updated envelope[dto.PageProgressResponse]
	status = doRequest(t, app, fiber.MethodPatch, "/api/v1/pages/s3-storage",
		`{"timeSpent":31000,"scrollDepth":85}`, &updated)
	if status != fiber.StatusOK {
		t.Fatalf("update: status %d", status)
	}
	if updated.Data.Page == nil || !updated.Data.Page.Completed {
		t.Fatalf("expected auto-completion on update, got %+v", updated.Data.Page)
	}
	if updated.Data.ShowCompletionPrompt {
		t.Fatalf("completed pages never show the prompt")
	}

	var achievements envelope[[]model.Achievement]
	doRequest(t, app, fiber.MethodGet, "/api/v1/achievements", "", &achievements)
	if !hasAchievement(achievements.Data, model.AchievementFirstPage) {
		t.Fatalf("expected first-page achievement, got %+v", achievements.Data)
	}

	var notification envelope[dto.NotificationResponse]
	doRequest(t, app, fiber.MethodGet, "/api/v1/notifications/current", "", &notification)
	if notification.Data.Current == nil || notification.Data.Current.ID != model.AchievementFirstPage {
		t.Fatalf("expected first-page notification, got %+v", notification.Data)
	}

	var incomplete envelope[model.PageProgress]
	doRequest(t, app, fiber.MethodPost, "/api/v1/pages/s3-storage/incomplete", "", &incomplete)
	if incomplete.Data.Completed || incomplete.Data.CompletedAt != nil {
		t.Fatalf("incomplete: %+v", incomplete.Data)
	}
}

func TestPageRoutesRejectBadInput(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "update unvisited", method: fiber.MethodPatch, path: "/api/v1/pages/s3-storage", body: `{"timeSpent":1000}`, want: fiber.StatusNotFound},
		{name: "scroll out of range", method: fiber.MethodPatch, path: "/api/v1/pages/cloudfront", body: `{"scrollDepth":140}`, want: fiber.StatusBadRequest},
		{name: "visit without path", method: fiber.MethodPost, path: "/api/v1/pages/s3-storage/visit", body: `{"title":"S3"}`, want: fiber.StatusBadRequest},
		{name: "bad page id", method: fiber.MethodGet, path: "/api/v1/pages/Not_A_Slug", want: fiber.StatusBadRequest},
		{name: "unknown section", method: fiber.MethodGet, path: "/api/v1/sections/nowhere", want: fiber.StatusBadRequest},
		{name: "garbage import", method: fiber.MethodPost, path: "/api/v1/progress/import", body: `{"metadata":{}}`, want: fiber.StatusBadRequest},
		{name: "archive disabled", method: fiber.MethodPost, path: "/api/v1/progress/export/archive", want: fiber.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		if got := doRequest(t, app, tc.method, tc.path, tc.body, nil); got != tc.want {
			t.Fatalf("%s: status %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestExportImportRoutes(t *testing.T) {
	t.Parallel()

	app, f := newTestApp(t)
	f.svc.VisitPage("cloudfront", "/learn/cloudfront", "CloudFront")
	f.svc.MarkPageComplete("cloudfront")

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/progress/export", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	exported, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("export status %d", resp.StatusCode)
	}

	doRequest(t, app, fiber.MethodPost, "/api/v1/progress/reset", "", nil)
	if _, ok := f.svc.GetPageProgress("cloudfront"); ok {
		t.Fatalf("reset should drop page progress")
	}

	var imported envelope[model.UserProgress]
	if status := doRequest(t, app, fiber.MethodPost, "/api/v1/progress/import", string(exported), &imported); status != fiber.StatusOK {
		t.Fatalf("import status %d", status)
	}
	if page := imported.Data.Pages["cloudfront"]; page == nil || !page.Completed {
		t.Fatalf("expected cloudfront restored, got %+v", page)
	}
}

func TestOverviewAndSectionRoutes(t *testing.T) {
	t.Parallel()

	app, f := newTestApp(t)
	f.svc.VisitPage("home", "/", "Home")
	f.svc.MarkPageComplete("home")

	var overview envelope[dto.OverviewResponse]
	doRequest(t, app, fiber.MethodGet, "/api/v1/progress/overview", "", &overview)
	if len(overview.Data.Sections) != model.TotalCatalogSections() {
		t.Fatalf("expected every catalog section, got %d", len(overview.Data.Sections))
	}
	if overview.Data.OverallCompletion != 4 {
		t.Fatalf("overall completion = %d, want 4", overview.Data.OverallCompletion)
	}

	var section envelope[model.SectionProgress]
	doRequest(t, app, fiber.MethodPost, "/api/v1/sections/main-navigation/reset", "", &section)
	if section.Data.CompletedCount != 0 || section.Data.TotalCount != 5 {
		t.Fatalf("reset section: %+v", section.Data)
	}
}
