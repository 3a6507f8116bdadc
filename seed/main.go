package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/seed/seeders"
	"github.com/lac-hong-legacy/learning_hub/services/repositories"
	"github.com/lac-hong-legacy/learning_hub/services/storage"
	"github.com/lac-hong-legacy/learning_hub/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		profile = flag.String("profile", seeders.ProfileStarter, "Profile to seed: starter, streak, complete")
		dbPath  = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		help    = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "data/learning_hub.db"
		}
	}
	if err := os.MkdirAll(filepath.Dir(databasePath), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&model.StorageItem{}); err != nil {
		log.Fatalf("Failed to migrate storage table: %v", err)
	}

	log.Printf("Connected to database: %s", databasePath)

	key := os.Getenv("STORAGE_KEY")
	if key == "" {
		key = shared.StorageKey
	}
	store := storage.New(storage.Options{
		Key:     key,
		Backend: storage.NewGormBackend(repositories.NewStorageRepository(db), shared.StorageEngineSqlite, nil),
	})
	if store.Degraded() {
		log.Fatalf("Database %s is not writable", databasePath)
	}

	if _, err := seeders.NewMainSeeder(store, time.Now()).Seed(*profile); err != nil {
		log.Fatalf("Failed to seed progress: %v", err)
	}

	log.Println("Seeding operation completed successfully!")
}

func showHelp() {
	log.Println(`
Progress seeding tool for the learning hub

Usage: go run ./seed [flags]

Flags:
  -profile string
        Learner profile to write (default "starter")
        Options: starter, streak, complete
  -db string
        Database path (overrides DB_DATABASE environment variable)
  -help
        Show this help message

Environment Variables:
  DB_DATABASE - Default database path (default: data/learning_hub.db)
  STORAGE_KEY - Storage key of the progress document
`)
}
