package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learning_hub/services/repositories"
	"github.com/lac-hong-legacy/learning_hub/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SqliteService struct {
	context.DefaultService
	db *gorm.DB

	database string
	enabled  bool
}

const SQLITE_SVC = "sqlite_svc"

// Id returns Service ID
func (ds SqliteService) Id() string {
	return SQLITE_SVC
}

// Db Access to raw SqliteService db
func (ds SqliteService) Db() *gorm.DB {
	return ds.db
}

// Configure the service
func (ds *SqliteService) Configure(ctx *context.Context) error {
	ds.enabled = os.Getenv("STORAGE_ENGINE") == shared.StorageEngineSqlite
	ds.database = os.Getenv("DB_DATABASE")
	if ds.database == "" {
		ds.database = filepath.Join("data", "learning_hub.db")
	}

	return ds.DefaultService.Configure(ctx)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *SqliteService) Start() (err error) {
	if !ds.enabled {
		return nil
	}

	if dir := filepath.Dir(ds.database); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	ds.db, err = gorm.Open(sqlite.Open(ds.database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}
	if err = migrateStorage(ds.db); err != nil {
		log.Printf("Sqlite migration failed: %v", err)
		return err
	}

	log.WithFields(log.Fields{"database": ds.database}).Info("Sqlite storage engine ready")
	return nil
}

func (ds *SqliteService) Enabled() bool {
	return ds.enabled && ds.db != nil
}

func (ds *SqliteService) StorageRepository() *repositories.StorageRepository {
	return repositories.NewStorageRepository(ds.db)
}

func (ds *SqliteService) Shutdown() {
	closeDB(ds.db)
}

func (ds *SqliteService) HandleError(err error) error {
	return handleDBError(shared.StorageEngineSqlite, err, sqliteErrorMatchers)
}
