package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/assignment"
	"github.com/credtube/credtube-server-go/internal/features/auth"
	"github.com/credtube/credtube-server-go/internal/features/importer"
	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/internal/features/progress"
	"github.com/credtube/credtube-server-go/internal/features/quiz"
	"github.com/credtube/credtube-server-go/internal/features/token"
	"github.com/credtube/credtube-server-go/internal/features/user"
	"github.com/credtube/credtube-server-go/internal/features/video"
	"github.com/credtube/credtube-server-go/pkg/cache"
	"github.com/credtube/credtube-server-go/pkg/config"
	"github.com/credtube/credtube-server-go/pkg/email"
	"github.com/credtube/credtube-server-go/pkg/health"
	"github.com/credtube/credtube-server-go/pkg/middleware"
	"github.com/credtube/credtube-server-go/pkg/realtime"
	"github.com/credtube/credtube-server-go/pkg/types"
	"github.com/credtube/credtube-server-go/pkg/youtube"
)

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, cfg *config.Config, db *gorm.DB, logger *slog.Logger, cacheClient cache.Client, hub *realtime.Hub, emailClient *email.Client, fetcher youtube.MetadataFetcher) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(db, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Database stats endpoint (protected in production)
	if !cfg.IsProduction() {
		engine.GET("/debug/db-stats", healthHandler.DBStats)
	}

	api := engine.Group("/api")

	authHandler := auth.NewHandler(db, logger, cfg)
	auth.RegisterRoutes(api, authHandler)

	tokenHandler := token.NewHandler(db, logger)
	token.RegisterPublicRoutes(api, tokenHandler)

	authed := api.Group("", middleware.AuthMiddleware(db, cfg.JWTSecret, logger))
	adminOnly := middleware.RequireRoles(db, cfg.JWTSecret, logger, types.RoleAdmin)

	userHandler := user.NewHandler(db, logger)
	user.RegisterRoutes(authed, userHandler, adminOnly)

	playlistHandler := playlist.NewHandler(db, logger, cacheClient)
	playlist.RegisterRoutes(authed, playlistHandler, adminOnly)

	videoHandler := video.NewHandler(db, logger)
	video.RegisterRoutes(authed, videoHandler, adminOnly)

	quizHandler := quiz.NewHandler(db, logger, cfg.Issuer, hub, emailClient)
	quiz.RegisterRoutes(authed, quizHandler, adminOnly)

	progressHandler := progress.NewHandler(db, logger, hub)
	progress.RegisterRoutes(authed, progressHandler)

	token.RegisterRoutes(authed, tokenHandler, adminOnly)

	importHandler := importer.NewHandler(db, logger, fetcher)
	importer.RegisterRoutes(authed, importHandler, adminOnly)

	assignmentHandler := assignment.NewHandler(db, logger, assignment.TemplateGenerator{})
	assignment.RegisterRoutes(authed, assignmentHandler, adminOnly)
}
