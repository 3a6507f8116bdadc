package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lac-hong-legacy/learning_hub/middleware"
	"github.com/lac-hong-legacy/learning_hub/services"
)

// @title Learning Hub Progress API
// @version 1.0
// @description Local bridge API for learning progress and export archives.
// @host 127.0.0.1:8000
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using environment")
	}

	ctx, err := context.NewCtx(
		&services.SqliteService{},
		&services.PostgresService{},
		&services.RedisService{},
		&services.MinIOService{},
		&services.MonitoringService{},

		&services.StorageService{},
		&services.NotificationService{},
		&services.ProgressService{},
		&services.SchedulerService{},
		&middleware.ThrottleMiddleware{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service context stopped")
		return
	}
}
