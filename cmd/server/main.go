// Package main runs the event management HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventory/backend/config"
	"github.com/eventory/backend/internal/agencies"
	"github.com/eventory/backend/internal/auth"
	"github.com/eventory/backend/internal/dashboard"
	"github.com/eventory/backend/internal/hotels"
	"github.com/eventory/backend/internal/middleware"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/internal/participants"
	"github.com/eventory/backend/internal/places"
	"github.com/eventory/backend/internal/projects"
	"github.com/eventory/backend/pkg/database"
	"github.com/eventory/backend/pkg/redis"
	"github.com/eventory/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	sessions := auth.NewSessionStore(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, sessions, logger)

	// Agencies
	agencyRepo := agencies.NewRepository(pool)
	agencyHandler := agencies.NewHandler(agencyRepo)

	// Projects
	projectRepo := projects.NewRepository(pool)
	projectHandler := projects.NewHandler(projectRepo, logger)

	// Participants
	participantRepo := participants.NewRepository(pool)
	participantHandler := participants.NewHandler(participantRepo, logger)

	// Hotel catalog. The places client backfills metadata before a hotel's
	// room types are first seeded; without an API key it is a no-op.
	placesClient := places.NewClient(cfg.Places, logger)
	hotelRepo := hotels.NewRepository(pool)
	hotelHandler := hotels.NewHandler(hotelRepo, placesClient, logger)

	// Dashboard
	dashboardHandler := dashboard.NewHandler(projectRepo, participantRepo, agencyRepo, hotelRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API. Every request re-resolves role and agency server-side.
	api := router.Group("")
	api.Use(middleware.Authenticate(jwtService, authRepo, sessions))
	{
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/me", authHandler.Me)
		api.PATCH("/me", authHandler.UpdateMe)

		// Agencies
		api.GET("/agencies", agencyHandler.List)
		api.GET("/agencies/:id", agencyHandler.GetByID)
		api.PATCH("/agencies/:id", middleware.RequireRole(models.RoleAgency), agencyHandler.Update)

		// Projects. Writes are AGENCY-only; the row policies enforce the same
		// thing again underneath.
		api.GET("/projects", projectHandler.List)
		api.POST("/projects", middleware.RequireRole(models.RoleAgency), projectHandler.Create)
		api.GET("/projects/:id", projectHandler.GetByID)
		api.PATCH("/projects/:id", middleware.RequireRole(models.RoleAgency), projectHandler.Update)
		api.DELETE("/projects/:id", middleware.RequireRole(models.RoleAgency), projectHandler.Delete)

		// Participants
		api.GET("/projects/:id/participants", participantHandler.ListByProject)
		api.POST("/projects/:id/participants", middleware.RequireRole(models.RoleAgency), participantHandler.Create)
		api.PATCH("/participants/:id", middleware.RequireRole(models.RoleAgency), participantHandler.Update)
		api.DELETE("/participants/:id", middleware.RequireRole(models.RoleAgency), participantHandler.Delete)

		// Hotel catalog (global, read for everyone)
		api.GET("/hotels/search", hotelHandler.Search)
		api.GET("/hotels/:id", hotelHandler.GetByID)
		api.GET("/hotels/:id/room-types", hotelHandler.ListRoomTypes)
		api.POST("/hotels/:id/room-types", hotelHandler.CreateRoomType)

		// Dashboard
		api.GET("/dashboard/stats", dashboardHandler.Stats)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
