package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	"github.com/lac-hong-legacy/learning_hub/docs"
	"github.com/lac-hong-legacy/learning_hub/middleware"
	"github.com/lac-hong-legacy/learning_hub/services/handlers"
	"github.com/lac-hong-legacy/learning_hub/shared"
)

// HttpService serves the local UI bridge API. It binds to loopback unless
// HTTP_HOST says otherwise.
type HttpService struct {
	context.DefaultService

	host string
	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	svc.host = os.Getenv("HTTP_HOST")
	if svc.host == "" {
		svc.host = "127.0.0.1"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	progressSvc := svc.Service(PROGRESS_SVC).(*ProgressService)
	notificationSvc := svc.Service(NOTIFICATION_SVC).(*NotificationService)
	throttle := svc.Service(middleware.THROTTLE_MIDDLEWARE_SVC).(*middleware.ThrottleMiddleware)

	var archiveSvc handlers.ArchiveServiceInterface
	if minioSvc, ok := svc.Service(MINIO_SVC).(*MinIOService); ok {
		archiveSvc = minioSvc
	}

	svc.app = fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		ErrorHandler: shared.ErrorHandler,
		JSONEncoder:  shared.Marshal,
		JSONDecoder:  shared.Unmarshal,
	})
	docs.SwaggerInfo.BasePath = ""
	svc.app.Use(recover.New())

	if os.Getenv("LOG_LEVEL") == "TRACE" {
		svc.app.Use(logger.New())
	}
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.app.Use(MonitoringMiddleware(monitoringSvc))
	}

	origins := os.Getenv("CORS_ALLOW_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	svc.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	svc.app.Get("/ping", svc.ping)
	svc.app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := svc.app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	RegisterRoutes(v1,
		handlers.NewProgressHandler(progressSvc, notificationSvc),
		handlers.NewArchiveHandler(progressSvc, archiveSvc),
		throttle,
	)

	svc.app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	addr := fmt.Sprintf("%s:%v", svc.host, svc.port)
	log.Printf("HTTP API listening on %s", addr)
	return svc.app.Listen(addr)
}

// RegisterRoutes mounts the progress API on router.
func RegisterRoutes(router fiber.Router, progress *handlers.ProgressHandler, archive *handlers.ArchiveHandler, throttle *middleware.ThrottleMiddleware) {
	router.Get("/progress", progress.GetProgress)
	router.Get("/progress/overview", progress.GetOverview)
	router.Post("/progress/reset", progress.ResetProgress)
	router.Get("/progress/export", progress.ExportProgress)
	router.Post("/progress/import", progress.ImportProgress)

	router.Get("/progress/export/archive", archive.ListArchives)
	router.Post("/progress/export/archive", archive.ArchiveExport)
	router.Post("/progress/import/archive/:object", archive.ImportArchive)

	pages := router.Group("/pages/:pageId")
	pages.Get("", progress.GetPage)
	pages.Patch("", throttle.PageSyncThrottle(), progress.UpdatePage)
	pages.Post("/visit", progress.VisitPage)
	pages.Post("/complete", progress.CompletePage)
	pages.Post("/incomplete", progress.IncompletePage)

	router.Get("/sections/:sectionId", progress.GetSection)
	router.Post("/sections/:sectionId/reset", progress.ResetSection)

	router.Get("/recommendations", progress.GetRecommendations)
	router.Get("/achievements", progress.GetAchievements)
	router.Get("/notifications/current", progress.GetCurrentNotification)
	router.Post("/notifications/dismiss", progress.DismissNotification)

	router.Get("/storage/info", progress.GetStorageInfo)
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")
	return shared.ResponseOK(c, "pong")
}
