package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/internal/features/progress"
	"github.com/credtube/credtube-server-go/internal/features/quiz"
	"github.com/credtube/credtube-server-go/internal/features/token"
	"github.com/credtube/credtube-server-go/internal/features/user"
	"github.com/credtube/credtube-server-go/internal/features/video"
	"github.com/credtube/credtube-server-go/pkg/config"
	"github.com/credtube/credtube-server-go/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Get underlying SQL connection
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Failed to get SQL DB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Test connection
	ctx := context.Background()
	if err := sqlDB.PingContext(ctx); err != nil {
		appLogger.Error("Failed to ping database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Database connection established")

	// Enable UUID extension
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		appLogger.Error("Failed to create uuid extension", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("UUID extension enabled")

	// Run auto migrations
	appLogger.Info("Starting database migrations...")

	if err := db.AutoMigrate(
		&user.User{},
		&user.UserRole{},
		&playlist.Playlist{},
		&playlist.Enrollment{},
		&video.Video{},
		&quiz.Quiz{},
		&progress.Progress{},
		&token.Token{},
	); err != nil {
		appLogger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Database migrations completed successfully")
	fmt.Println("\n✅ All database tables created/updated successfully!")
}
