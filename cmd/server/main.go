// Package main runs the EventX HTTP server with graceful shutdown.
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

	"github.com/eventx/backend/config"
	"github.com/eventx/backend/internal/auth"
	"github.com/eventx/backend/internal/colleges"
	"github.com/eventx/backend/internal/events"
	"github.com/eventx/backend/internal/fests"
	"github.com/eventx/backend/internal/middleware"
	"github.com/eventx/backend/internal/passes"
	"github.com/eventx/backend/internal/payments"
	"github.com/eventx/backend/internal/registrations"
	"github.com/eventx/backend/pkg/database"
	"github.com/eventx/backend/pkg/redis"
	"github.com/eventx/backend/pkg/response"
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

	var cache *redis.Cache
	if cfg.Cache.Enabled {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = redis.NewCache(rdb, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth + organizer requests
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Fest registry + committee membership
	festRepo := fests.NewRepository(pool)
	festSvc := fests.NewService(festRepo)
	festHandler := fests.NewHandler(festSvc, festRepo, cache, logger)

	// Entry passes + gate
	passRepo := passes.NewRepository(pool)
	passSvc := passes.NewService(passRepo, festSvc)
	passHandler := passes.NewHandler(passSvc, passRepo, logger)

	// Event registrations
	gateway := payments.NewSimulated(logger)
	regRepo := registrations.NewRepository(pool)
	regSvc := registrations.NewService(regRepo, festSvc, gateway)
	regHandler := registrations.NewHandler(regSvc, logger)

	// Events + moderation
	eventRepo := events.NewRepository(pool)
	eventSvc := events.NewService(eventRepo, festSvc)
	eventHandler := events.NewHandler(eventSvc, eventRepo, cache, logger)

	// Colleges
	collegeRepo := colleges.NewRepository(pool)
	collegeHandler := colleges.NewHandler(collegeRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
	}

	// Public listings
	public := router.Group("/api")
	{
		public.GET("/fests", festHandler.List)
		public.GET("/fests/:slug", festHandler.Get)
		public.GET("/fests/:slug/events", eventHandler.ListForFest)
		public.GET("/events", eventHandler.List)
		public.GET("/events/city", eventHandler.ListCity)
		public.GET("/events/:id", eventHandler.Get)
		public.GET("/colleges", collegeHandler.List)
		public.GET("/colleges/:id", collegeHandler.Get)
	}

	// Protected API (JWT required)
	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/users/me", authHandler.Me)
		api.POST("/users/request-organizer", authHandler.RequestOrganizer)

		// Fests + committee
		api.GET("/fests/all", middleware.RequireRole("organizer", "admin"), festHandler.ListAll)
		api.POST("/fests", festHandler.Create)
		api.GET("/fests/:slug/members", festHandler.ListMembers)
		api.POST("/fests/:slug/members", festHandler.AddMember)
		api.DELETE("/fests/:slug/members/:user_id", festHandler.RemoveMember)
		api.PATCH("/fests/:slug/status", festHandler.SetStatus)

		// Entry passes + gate
		api.POST("/fests/:slug/entry-pass", passHandler.Claim)
		api.GET("/fests/:slug/my-pass", passHandler.GetMine)
		api.GET("/fests/:slug/my-pass/qr", passHandler.GetMineQR)
		api.POST("/fests/:slug/gate-scan/:pass_id", passHandler.Scan)

		// Events
		api.GET("/events/mine", eventHandler.ListMine)
		api.POST("/events", eventHandler.Create)
		api.PATCH("/events/:id", eventHandler.Patch)

		// Event registrations
		api.GET("/fest-events/my-registrations", regHandler.ListMine)
		api.POST("/fest-events/:id/register", regHandler.Register)
		api.GET("/fest-events/:id/registrations", regHandler.ListForEvent)
	}

	// Admin
	admin := router.Group("/api/admin")
	admin.Use(middleware.JWT(jwtService), middleware.RequireRole("admin"))
	{
		admin.GET("/organizer-requests", authHandler.ListOrganizerRequests)
		admin.POST("/organizer-requests/:id/approve", authHandler.ReviewOrganizerRequest(true))
		admin.POST("/organizer-requests/:id/reject", authHandler.ReviewOrganizerRequest(false))

		admin.GET("/events/pending", eventHandler.ListPending)
		admin.POST("/events/:id/approve", eventHandler.Approve)
		admin.POST("/events/:id/reject", eventHandler.Reject)

		admin.POST("/passes/:id/block", passHandler.Block)

		admin.POST("/colleges", collegeHandler.Create)
		admin.DELETE("/colleges/:id", collegeHandler.Delete)
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
