package services

import (
	"fmt"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learning_hub/services/storage"
	"github.com/lac-hong-legacy/learning_hub/shared"
	log "github.com/sirupsen/logrus"
)

// StorageService builds the progress storage adapter for the configured
// engine and picks the cross-instance notifier.
type StorageService struct {
	context.DefaultService

	engine  string
	dataDir string
	key     string
	timeout time.Duration

	storage *storage.ProgressStorage
}

const STORAGE_SVC = "storage_svc"

func (svc StorageService) Id() string {
	return STORAGE_SVC
}

func (svc *StorageService) Configure(ctx *context.Context) error {
	svc.engine = os.Getenv("STORAGE_ENGINE")
	if svc.engine == "" {
		svc.engine = shared.StorageEngineMemory
	}

	svc.dataDir = os.Getenv("STORAGE_DIR")
	if svc.dataDir == "" {
		svc.dataDir = "data"
	}

	svc.key = os.Getenv("STORAGE_KEY")
	if svc.key == "" {
		svc.key = shared.StorageKey
	}

	svc.timeout = envMillis("STORAGE_TIMEOUT_MS")

	return svc.DefaultService.Configure(ctx)
}

func (svc *StorageService) Start() error {
	backend, err := svc.buildBackend()
	if err != nil {
		return err
	}

	var notifier storage.Notifier = storage.NewMemoryNotifier()
	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok && redisSvc.Enabled() {
		notifier = storage.NewRedisNotifier(redisSvc.GetClient(), redisSvc.ChannelPrefix())
	}

	var metrics storage.Metrics
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		metrics = monitoringSvc
	}

	svc.storage = storage.New(storage.Options{
		Key:      svc.key,
		Backend:  backend,
		Notifier: notifier,
		Metrics:  metrics,
		Timeout:  svc.timeout,
	})

	log.WithFields(log.Fields{
		"engine":   svc.engine,
		"degraded": svc.storage.Degraded(),
	}).Info("Progress storage ready")
	return nil
}

func (svc *StorageService) buildBackend() (storage.Backend, error) {
	switch svc.engine {
	case shared.StorageEngineMemory:
		return storage.NewMemoryBackend(), nil
	case shared.StorageEngineFile:
		return storage.NewFileBackend(svc.dataDir), nil
	case shared.StorageEngineSqlite:
		sqliteSvc, ok := svc.Service(SQLITE_SVC).(*SqliteService)
		if !ok || !sqliteSvc.Enabled() {
			return nil, fmt.Errorf("storage engine %s: sqlite service not running", svc.engine)
		}
		return storage.NewGormBackend(sqliteSvc.StorageRepository(), svc.engine, sqliteSvc.HandleError), nil
	case shared.StorageEnginePostgres:
		postgresSvc, ok := svc.Service(POSTGRES_SVC).(*PostgresService)
		if !ok || !postgresSvc.Enabled() {
			return nil, fmt.Errorf("storage engine %s: postgres service not running", svc.engine)
		}
		return storage.NewGormBackend(postgresSvc.StorageRepository(), svc.engine, postgresSvc.HandleError), nil
	case shared.StorageEngineRedis:
		redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService)
		if !ok || !redisSvc.Enabled() {
			return nil, fmt.Errorf("storage engine %s: REDIS_ADDR not set", svc.engine)
		}
		return storage.NewRedisBackend(redisSvc.GetClient()), nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q", svc.engine)
	}
}

func (svc *StorageService) Storage() *storage.ProgressStorage {
	return svc.storage
}

func (svc *StorageService) Engine() string {
	return svc.engine
}

func (svc *StorageService) Shutdown() {
	if svc.storage == nil {
		return
	}
	if !svc.storage.Flush() {
		log.Warn("Pending progress could not be written on shutdown")
	}
}
