package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/credtube/credtube-server-go/internal/features/user"
	"github.com/credtube/credtube-server-go/pkg/config"
	"github.com/credtube/credtube-server-go/pkg/logger"
	"github.com/credtube/credtube-server-go/pkg/types"
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

	reader := bufio.NewReader(os.Stdin)

	// Get user details
	fmt.Print("Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password (min 8 chars): ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	// Validate required fields
	if name == "" || email == "" || len(password) < 8 {
		fmt.Println("❌ Error: Name, email, and password (min 8 chars) are required")
		os.Exit(1)
	}

	// Create admin user (hashes password, derives DID, assigns role)
	newUser, err := user.Create(db, user.CreateInput{
		Name:     name,
		Email:    email,
		Password: password,
		Roles:    []types.Role{types.RoleAdmin},
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			fmt.Println("❌ Error: A user with this email already exists")
			os.Exit(1)
		}
		appLogger.Error("Failed to create admin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("\n✅ Admin created successfully!")
	fmt.Printf("   ID: %s\n", newUser.ID)
	fmt.Printf("   Email: %s\n", newUser.Email)
	fmt.Printf("   DID: %s\n", newUser.DID)
}
