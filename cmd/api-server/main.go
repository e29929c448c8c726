package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"djrating/database"
	"djrating/internal/config"
	"djrating/internal/logger"
	"djrating/internal/metrics"
	"djrating/internal/microservices/http-api/handler"
	"djrating/internal/microservices/http-api/middleware"
	"djrating/internal/microservices/http-api/repository"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.OpenGorm(cfg, zl)
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}
	if err := database.RunMigrations(db, zl); err != nil {
		zl.Fatal("migrations failed", zap.Error(err))
	}

	// Redis is optional; without it every cache lookup is a miss.
	redisClient, err := repository.NewRedisClient(context.Background(), cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		zl.Warn("redis unavailable, running without rating cache", zap.Error(err))
	}
	cache := repository.NewRatingCache(redisClient, cfg.CacheTTL)

	store := repository.NewStore(db)
	runner := service.NewAsyncRunner(zl, cfg.TaskTimeout)

	taskService := service.NewTaskService(store, zl)
	taskEvents := service.NewTaskEvents(taskService, store, runner)
	ratingService := service.NewRatingService(store, cache, zl)
	reviewService := service.NewReviewService(store, cache, taskEvents, zl)
	inviteService := service.NewInviteService(store, service.InviteSettings{
		UsageLimit: cfg.InviteUsageLimit,
		CodeTTL:    cfg.InviteCodeTTL,
	}, zl)
	commentService := service.NewCommentService(store, taskEvents, zl)

	var identity service.IdentityProvider = service.DisabledIdentityProvider{}
	if cfg.IsDevelopment() {
		identity = service.DevIdentityProvider{}
		zl.Warn("development identity provider enabled: login codes are trusted as-is")
	}
	authService := service.NewAuthService(store.Users(), taskService, identity, cfg, zl)

	if err := taskService.SeedConfigs(context.Background(), service.DefaultTaskConfigs()); err != nil {
		zl.Fatal("failed to seed task configs", zap.Error(err))
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(zl))
	r.Use(middleware.RequestLogger(zl))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.MetricsEnabled {
		r.Use(metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("")
	protected := r.Group("", middleware.AuthMiddleware(authService))
	admin := r.Group("/admin", middleware.RequireAdminKey(cfg.AdminKeyHash))
	inviteGuard := middleware.RateLimit(middleware.NewIPRateLimiter(cfg.InviteRatePerSecond, cfg.InviteRateBurst))

	authHandler := handler.NewAuthHandler(authService)
	djHandler := handler.NewDJHandler(ratingService, reviewService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	taskHandler := handler.NewTaskHandler(taskService, taskEvents)
	inviteHandler := handler.NewInviteHandler(inviteService)
	commentHandler := handler.NewCommentHandler(commentService)

	authHandler.RegisterRoutes(public, protected)
	djHandler.RegisterRoutes(public)
	djHandler.RegisterAdminRoutes(admin)
	reviewHandler.RegisterRoutes(public, protected)
	taskHandler.RegisterRoutes(protected)
	inviteHandler.RegisterRoutes(protected, inviteGuard)
	inviteHandler.RegisterAdminRoutes(admin)
	commentHandler.RegisterRoutes(public, protected)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		zl.Info("api server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.GoEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		zl.Info("received shutdown signal")
	case err := <-errChan:
		zl.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
	}

	// let in-flight progress jobs finish before closing the pool
	runner.Wait()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zl.Info("server stopped")
}
