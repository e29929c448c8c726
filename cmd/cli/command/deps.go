package command

import (
	"context"
	"fmt"

	"djrating/database"
	"djrating/internal/config"
	"djrating/internal/logger"
	"djrating/internal/microservices/http-api/repository"
	"djrating/internal/microservices/http-api/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps is what the database-backed commands share. close releases the pool.
type deps struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	store  repository.Store
	cache  *repository.RatingCache
}

func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDeps(ctx context.Context) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	zl, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		return nil, err
	}

	db, err := database.OpenGorm(cfg, zl)
	if err != nil {
		return nil, err
	}

	redisClient, err := repository.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		zl.Warn("redis unavailable, cached snapshots will not be refreshed", zap.Error(err))
	}

	return &deps{
		cfg:    cfg,
		logger: zl,
		db:     db,
		store:  repository.NewStore(db),
		cache:  repository.NewRatingCache(redisClient, cfg.CacheTTL),
	}, nil
}

func (d *deps) ratingService() service.RatingService {
	return service.NewRatingService(d.store, d.cache, d.logger)
}

func (d *deps) taskService() service.TaskService {
	return service.NewTaskService(d.store, d.logger)
}

func (d *deps) inviteService() service.InviteService {
	return service.NewInviteService(d.store, service.InviteSettings{
		UsageLimit: d.cfg.InviteUsageLimit,
		CodeTTL:    d.cfg.InviteCodeTTL,
	}, d.logger)
}

func (d *deps) close() {
	_ = d.logger.Sync()
	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
