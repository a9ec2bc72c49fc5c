package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bhutan-travel/core/internal/config"
	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/modules/auth"
	"github.com/bhutan-travel/core/internal/modules/destination"
	"github.com/bhutan-travel/core/internal/modules/experience"
	"github.com/bhutan-travel/core/internal/modules/experiencetype"
	"github.com/bhutan-travel/core/internal/modules/hotel"
	"github.com/bhutan-travel/core/internal/modules/promotion"
	"github.com/bhutan-travel/core/internal/modules/storage/image"
	"github.com/bhutan-travel/core/internal/modules/tour"
	"github.com/bhutan-travel/core/internal/modules/tourrequest"
	"github.com/bhutan-travel/core/internal/modules/user"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	log := a.logger
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) {
		response.Fail(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if a.cfg.Storage.Driver == config.StorageLocal {
		r.Static(a.cfg.Storage.PublicPrefix, image.LocalDir(a.cfg))
	}

	api := r.Group("/api")
	api.GET("/health", a.health)

	destination.NewHandler(destination.NewService(db, a.images, log), log).RegisterRoutes(api, authMW)
	experiencetype.NewHandler(experiencetype.NewService(db, a.images, log), log).RegisterRoutes(api, authMW)
	experience.NewHandler(experience.NewService(db, a.images, log), log).RegisterRoutes(api, authMW)
	hotel.NewHandler(hotel.NewService(db, a.images, log), log).RegisterRoutes(api, authMW)
	tour.NewHandler(tour.NewService(db, a.images, log), log).RegisterRoutes(api, authMW)
	image.NewHandler(a.images, log).RegisterRoutes(api, authMW)

	engine := promotion.NewEngine(promotion.NewGormCounter(db), promotion.NewGormTourLoader(db), log)
	inquiryLimit := middleware.RateLimit(a.rdb, middleware.RateLimitOptions{
		Max:    int64(a.cfg.RateLimit.InquiryPerMinute),
		Window: time.Minute,
		Prefix: "inquiry",
	}, log)
	tourrequest.NewHandler(tourrequest.NewService(db, engine, a.mailer, log), log).
		RegisterRoutes(api, authMW, inquiryLimit, middleware.Idempotence(a.rdb))

	user.NewHandler(user.NewService(db, log), log).RegisterRoutes(api, authMW)
	loginLimit := middleware.RateLimit(a.rdb, middleware.RateLimitOptions{
		Max:    10,
		Window: time.Minute,
		Prefix: "login",
	}, log)
	auth.NewHandler(auth.NewService(db, sessionTTL(a.cfg), log), log).RegisterRoutes(api, authMW, loginLimit)

	api.GET("/jobs", authMW, func(c *gin.Context) { response.OK(c, a.sched.List()) })
}

func (a *App) health(c *gin.Context) {
	status := gin.H{
		"site":    a.cfg.Site.Name,
		"env":     a.cfg.Env,
		"uptime":  humanizeDuration(time.Since(processStart)),
		"storage": a.cfg.Storage.Driver,
		"redis":   a.rdb != nil,
		"mail":    a.mailer.Enabled(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "down"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	status["database"] = "up"
	if a.rdb != nil {
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = strings.TrimSpace(err.Error())
		}
	}
	response.OK(c, status)
}
