package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/lac-hong-legacy/learning_hub/model"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// dbErrorMatcher maps a driver error message to a status code and error type.
type dbErrorMatcher struct {
	contains   []string
	statusCode int
	errorType  string
}

var (
	sqliteErrorMatchers = []dbErrorMatcher{
		{contains: []string{"database is locked"}, statusCode: http.StatusServiceUnavailable, errorType: "DATABASE_LOCKED"},
		{contains: []string{"no such table"}, statusCode: http.StatusInternalServerError, errorType: "SCHEMA_ERROR"},
		{contains: []string{"readonly database"}, statusCode: http.StatusServiceUnavailable, errorType: "DATABASE_READONLY"},
	}

	postgresErrorMatchers = []dbErrorMatcher{
		{contains: []string{"relation", "does not exist"}, statusCode: http.StatusInternalServerError, errorType: "SCHEMA_ERROR"},
		{contains: []string{"connection refused"}, statusCode: http.StatusServiceUnavailable, errorType: "DATABASE_CONNECTION_ERROR"},
		{contains: []string{"too many clients"}, statusCode: http.StatusServiceUnavailable, errorType: "DATABASE_BUSY"},
	}
)

func (m dbErrorMatcher) matches(msg string) bool {
	for _, part := range m.contains {
		if !strings.Contains(msg, part) {
			return false
		}
	}
	return true
}

func classifyDBError(err error, matchers []dbErrorMatcher) (int, string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		return http.StatusInternalServerError, "TRANSACTION_ERROR"
	}

	msg := err.Error()
	for _, m := range matchers {
		if m.matches(msg) {
			return m.statusCode, m.errorType
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// handleDBError logs err with its classification and wraps it with the
// error type.
func handleDBError(engine string, err error, matchers []dbErrorMatcher) error {
	if err == nil {
		return nil
	}

	statusCode, errorType := classifyDBError(err, matchers)
	logEntry := log.WithFields(log.Fields{
		"engine":      engine,
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

func migrateStorage(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.StorageItem{}); err != nil {
		return fmt.Errorf("failed to migrate storage table: %w", err)
	}
	return nil
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
