package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "learning_hub"
	DEFAULT_PROMETHEUS_PORT = 2112
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// API metrics
var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: SERVICE_NAME,
			Name:      "api_requests_total",
			Help:      "Bridge API requests by route, method and status class",
		},
		[]string{"route", "method", "class"},
	)

	apiRequestsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: SERVICE_NAME,
			Name:      "api_requests_in_flight",
			Help:      "Bridge API requests currently being served",
		},
		[]string{"method"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: SERVICE_NAME,
			Name:      "api_request_duration_seconds",
			Help:      "Bridge API latency in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{"route", "method"},
	)

	apiResponseBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: SERVICE_NAME,
			Name:      "api_response_size_bytes",
			Help:      "Bridge API response payload size",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
		},
		[]string{"route"},
	)
)

// Storage and progress metrics
var (
	storageSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: SERVICE_NAME,
			Name:      "storage_saves_total",
			Help:      "Progress document writes by engine and result",
		},
		[]string{"engine", "result"},
	)

	storageDebouncedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: SERVICE_NAME,
			Name:      "storage_debounced_total",
			Help:      "Pending progress writes replaced by a newer debounced write",
		},
	)

	storageDegraded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: SERVICE_NAME,
			Name:      "storage_degraded",
			Help:      "1 while progress is kept in the in-memory fallback",
		},
	)

	storageExternalChangesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: SERVICE_NAME,
			Name:      "storage_external_changes_total",
			Help:      "Progress reloads triggered by another instance",
		},
	)

	progressMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: SERVICE_NAME,
			Name:      "progress_mutations_total",
			Help:      "Progress mutations by operation",
		},
		[]string{"operation"},
	)

	achievementsUnlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: SERVICE_NAME,
			Name:      "achievements_unlocked_total",
			Help:      "Achievements unlocked in this process",
		},
		[]string{"achievement"},
	)

	progressOverallCompletion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: SERVICE_NAME,
			Name:      "progress_overall_completion_percent",
			Help:      "Overall catalog completion percentage",
		},
	)
)

// MonitoringService serves prometheus metrics on a separate listener. It
// implements the storage metrics hook and the progress metrics hook.
type MonitoringService struct {
	context.DefaultService

	host     string
	port     int
	register *prometheus.Registry
	server   *fiber.App
}

func (svc *MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *context.Context) error {
	port, err := strconv.Atoi(os.Getenv("PROMETHEUS_PORT"))
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	svc.host = os.Getenv("METRICS_HOST")
	if svc.host == "" {
		svc.host = "127.0.0.1"
	}

	return svc.DefaultService.Configure(ctx)
}

// NewRegistry returns a registry holding the runtime collectors and every
// metric of the service.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		apiRequestsTotal,
		apiRequestsInFlight,
		apiRequestDuration,
		apiResponseBytes,

		storageSavesTotal,
		storageDebouncedTotal,
		storageDegraded,
		storageExternalChangesTotal,
		progressMutationsTotal,
		achievementsUnlockedTotal,
		progressOverallCompletion,
	)
	return reg
}

func (svc *MonitoringService) Start() error {
	svc.register = NewRegistry()
	storageDegraded.Set(0)

	svc.server = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	})
	svc.server.Use(recover.New())

	svc.server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})))
	svc.server.Get("/health", svc.healthHandler)

	addr := fmt.Sprintf("%s:%v", svc.host, svc.port)
	go func() {
		if err := svc.server.Listen(addr); err != nil {
			log.Error().Err(err).Msg("Prometheus metrics server stopped")
		}
	}()

	log.Info().Str("addr", addr).Msg("Prometheus metrics server started")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// RecordRequest records one served API request.
func (svc *MonitoringService) RecordRequest(method, route string, status int, duration time.Duration, responseSize int) {
	apiRequestsTotal.WithLabelValues(route, method, statusClass(status)).Inc()
	apiRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
	apiResponseBytes.WithLabelValues(route).Observe(float64(responseSize))
}

func (svc *MonitoringService) ObserveSave(engine string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	storageSavesTotal.WithLabelValues(engine, result).Inc()
}

func (svc *MonitoringService) ObserveDebounce() {
	storageDebouncedTotal.Inc()
}

func (svc *MonitoringService) SetDegraded(degraded bool) {
	if degraded {
		storageDegraded.Set(1)
		return
	}
	storageDegraded.Set(0)
}

func (svc *MonitoringService) ObserveExternalChange() {
	storageExternalChangesTotal.Inc()
}

func (svc *MonitoringService) RecordMutation(operation string) {
	progressMutationsTotal.WithLabelValues(operation).Inc()
}

func (svc *MonitoringService) RecordAchievement(id string) {
	achievementsUnlockedTotal.WithLabelValues(id).Inc()
}

func (svc *MonitoringService) SetOverallCompletion(percent int) {
	progressOverallCompletion.Set(float64(percent))
}

// MonitoringMiddleware records request metrics, labelled by route pattern.
func MonitoringMiddleware(monitoringSvc *MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()

		apiRequestsInFlight.WithLabelValues(method).Inc()
		defer apiRequestsInFlight.WithLabelValues(method).Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// route pattern, resolved after routing
		monitoringSvc.RecordRequest(method, c.Route().Path, status, time.Since(start), len(c.Response().Body()))
		return err
	}
}
