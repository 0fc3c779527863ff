package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credtube/credtube-server-go/internal/bootstrap"
	"github.com/credtube/credtube-server-go/internal/features/progress"
	"github.com/credtube/credtube-server-go/internal/http/routes"
	"github.com/credtube/credtube-server-go/pkg/cache"
	"github.com/credtube/credtube-server-go/pkg/config"
	"github.com/credtube/credtube-server-go/pkg/database"
	"github.com/credtube/credtube-server-go/pkg/email"
	"github.com/credtube/credtube-server-go/pkg/jobs"
	"github.com/credtube/credtube-server-go/pkg/logger"
	"github.com/credtube/credtube-server-go/pkg/metrics"
	"github.com/credtube/credtube-server-go/pkg/middleware"
	"github.com/credtube/credtube-server-go/pkg/realtime"
	"github.com/credtube/credtube-server-go/pkg/request"
	"github.com/credtube/credtube-server-go/pkg/youtube"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	if err := bootstrap.ApplyDatabaseMigrations(db, cfg, appLogger); err != nil {
		appLogger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := bootstrap.EnsureDefaultAdmin(db, appLogger); err != nil {
		appLogger.Error("ensure default admin failed", slog.String("error", err.Error()))
	}

	// Token issuance writes learning_tokens and user_progress.token_issued
	// without a transaction, so a crash between the two writes leaves
	// diverged rows. Surface the count at startup.
	if diverged, err := progress.CountTokenDivergence(db); err != nil {
		appLogger.Warn("token divergence check failed", slog.String("error", err.Error()))
	} else if diverged > 0 {
		appLogger.Warn("token_issued flags diverge from learning_tokens", slog.Int64("rows", diverged))
	}

	// Redis is optional; the in-memory cache serves single-instance setups
	var cacheClient cache.Client
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		cacheClient = redisClient
		appLogger.Info("redis cache initialized", slog.String("addr", cfg.Redis.Addr))
	} else {
		cacheClient = cache.NewMemoryCache()
		appLogger.Info("in-memory cache initialized")
	}

	// Email is optional; a nil client disables issuance and expiration mail
	emailClient := email.NewClient(
		cfg.Email.Host,
		cfg.Email.Port,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Email.From,
		cfg.Email.Secure,
	)
	if emailClient == nil {
		appLogger.Info("smtp not configured, email notifications disabled")
	}

	// YouTube metadata: real Data API when a key is configured, canned stub
	// otherwise
	var fetcher youtube.MetadataFetcher = youtube.StubFetcher{}
	if cfg.YouTube.APIKey != "" {
		fetcher = youtube.NewDataAPIClient(cfg.YouTube.APIKey)
		appLogger.Info("youtube data api client initialized")
	} else {
		appLogger.Info("youtube stub fetcher active (no API key configured)")
	}

	// Initialize Socket.IO hub for advisory progress/token events
	hub, err := realtime.NewHub(appLogger, cfg.JWTSecret)
	if err != nil {
		appLogger.Error("socket.io hub initialization failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer hub.Close()

	appLogger.Info("socket.io hub initialized")

	scheduler := jobs.NewScheduler(appLogger)
	scheduler.AddJob(
		jobs.NewTokenReconcileJob(db, progress.CountTokenDivergence, appLogger),
		1*time.Hour,
	)
	if emailClient != nil {
		scheduler.AddJob(
			jobs.NewCredentialExpirationJob(db, emailClient, appLogger),
			24*time.Hour,
		)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.New()

	// Mount Socket.IO handler FIRST before any middleware that could interfere
	// Socket.IO needs minimal middleware - just recovery and CORS
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register Socket.IO routes with minimal middleware
	router.GET("/socket.io/*any", gin.WrapH(hub.GetHandler()))
	router.POST("/socket.io/*any", gin.WrapH(hub.GetHandler()))

	// Now apply full middleware stack for all other routes
	router.Use(middleware.RequestID())                        // Add request IDs for tracing
	router.Use(middleware.Compression(middleware.BestSpeed))  // Compress responses (gzip)
	router.Use(middleware.RequestLogger(appLogger))           // Log all requests
	router.Use(middleware.SecurityHeaders())                  // Add security headers
	router.Use(middleware.CacheControl())                     // Set cache headers
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024)) // 10MB limit
	router.Use(metrics.Middleware())                          // Collect Prometheus metrics
	router.Use(request.Handler(appLogger))                    // Request context handler

	// Rate limiting (100 requests per minute per IP)
	rateLimiter := middleware.NewRateLimiter(100, time.Minute)
	router.Use(rateLimiter.Middleware())

	routes.Register(router, cfg, db, appLogger, cacheClient, hub, emailClient, fetcher)

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	appLogger.Info("server started successfully")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}
