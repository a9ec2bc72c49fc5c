// Package app wires configuration, storage and the HTTP modules into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bhutan-travel/core/internal/config"
	"github.com/bhutan-travel/core/internal/database"
	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/modules/storage/image"
	"github.com/bhutan-travel/core/internal/modules/user"
	pkgcron "github.com/bhutan-travel/core/internal/pkg/cron"
	"github.com/bhutan-travel/core/internal/pkg/mail"
	pkgredis "github.com/bhutan-travel/core/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rdb    *redis.Client
	images *image.Service
	mailer *mail.Sender
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New initializes the application: DB, redis, storage, bootstrap admin,
// routes and background jobs.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	applyRuntimeSettings(cfg, logger)

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	rdb, err := pkgredis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if rdb == nil {
		logger.Warn("redis is not configured, rate limits and idempotence are off")
	}
	images, err := image.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	if _, err := user.NewService(db, logger).EnsureBootstrapAdmin(ctx, cfg.BootstrapAdmin); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		router: newRouter(cfg, logger),
		db:     db,
		rdb:    rdb,
		images: images,
		mailer: mail.New(mailConfig(cfg)),
		logger: logger,
		cancel: cancel,
		sched:  pkgcron.New(logger),
	}
	a.registerRoutes()

	registerCronJobs(a.sched, db, logger)
	a.sched.Start(runCtx)
	return a, nil
}

func newRouter(cfg *config.AppConfig, logger *zap.Logger) *gin.Engine {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = int64(cfg.Storage.MaxSizeMB) << 20
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-idempotence"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	router.Use(cors.New(corsConfig))
	return router
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes connections.
func (a *App) Shutdown() {
	a.cancel()
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

var processStart = time.Now()
