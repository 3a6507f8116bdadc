package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learning_hub/services/repositories"
	"github.com/lac-hong-legacy/learning_hub/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxConnectBackoff = 10 * time.Second

// PostgresService opens the postgres storage engine when STORAGE_ENGINE is
// postgres. DATABASE_URL wins over the DB_* variables.
type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	dsn        string
	enabled    bool
	maxRetries int
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.enabled = os.Getenv("STORAGE_ENGINE") == shared.StorageEnginePostgres
	ds.dsn = postgresDSN()

	ds.maxRetries = 10
	if v, err := strconv.Atoi(os.Getenv("DB_MAX_RETRIES")); err == nil && v > 0 {
		ds.maxRetries = v
	}

	return ds.DefaultService.Configure(ctx)
}

func postgresDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "learning_hub"),
		envOr("DB_PORT", "5432"),
		envOr("DB_SSLMODE", "disable"),
		envOr("DB_TIMEZONE", "UTC"),
	)
}

func (ds *PostgresService) Start() error {
	if !ds.enabled {
		return nil
	}

	db, err := ds.connect()
	if err != nil {
		return err
	}
	ds.db = db

	if err := migrateStorage(ds.db); err != nil {
		log.Printf("Postgres migration failed: %v", err)
		return err
	}

	log.Println("Postgres storage engine ready")
	return nil
}

// connect retries with exponential backoff so the service can start before
// the database container accepts connections.
func (ds *PostgresService) connect() (*gorm.DB, error) {
	delay := time.Second
	var lastErr error

	for attempt := 1; attempt <= ds.maxRetries; attempt++ {
		db, err := gorm.Open(postgres.Open(ds.dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err == nil {
			err = ping(db)
		}
		if err == nil {
			return db, nil
		}
		lastErr = err
		closeDB(db)

		if attempt == ds.maxRetries {
			break
		}
		log.WithFields(log.Fields{
			"attempt": attempt,
			"retry":   delay.String(),
		}).Warnf("Postgres not reachable: %v", err)

		time.Sleep(delay)
		if delay *= 2; delay > maxConnectBackoff {
			delay = maxConnectBackoff
		}
	}

	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", ds.maxRetries, lastErr)
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (ds *PostgresService) Enabled() bool {
	return ds.enabled && ds.db != nil
}

func (ds *PostgresService) StorageRepository() *repositories.StorageRepository {
	return repositories.NewStorageRepository(ds.db)
}

func (ds *PostgresService) Shutdown() {
	closeDB(ds.db)
}

func (ds *PostgresService) HandleError(err error) error {
	return handleDBError(shared.StorageEnginePostgres, err, postgresErrorMatchers)
}
