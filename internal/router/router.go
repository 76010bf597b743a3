// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

// Options carries everything RegisterRoutes needs. Auth is nil when staff
// authentication is disabled; Redis is nil when neither the cache nor the
// rate limiter is enabled.
type Options struct {
	Reservations *handler.ReservationHandler
	Tables       *handler.TableHandler
	Auth         *handler.AuthHandler
	JWTSecret    string
	Ready        echo.HandlerFunc

	Metrics   *metrics.Metrics
	Logger    *log.Entry
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// RegisterRoutes installs the global middleware and every route.
func RegisterRoutes(e *echo.Echo, o Options) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(o.Logger, o.Metrics))
	e.Use(echomw.CORS())

	e.GET("/healthz", handler.Health)
	if o.Ready != nil {
		e.GET("/readyz", o.Ready)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Route-level middleware keeps echo's own 404/405 answers intact for
	// paths that do not match.
	var api []echo.MiddlewareFunc
	if o.Auth != nil {
		e.POST("/auth/login", o.Auth.Login, middleware.NewTokenBucket(o.RateLimit, o.Redis, o.Logger))
		api = append(api,
			middleware.OnWrites(middleware.JWTAuth(o.JWTSecret)),
			middleware.OnWrites(middleware.RequireRole(utils.RoleStaff)),
		)
	}
	api = append(api,
		middleware.NewTokenBucket(o.RateLimit, o.Redis, o.Logger),
		middleware.NewRedisCache(o.Cache, o.Redis, o.Logger),
	)

	r := o.Reservations
	e.GET("/reservations", r.List, api...)
	e.POST("/reservations", r.Create, api...)
	e.GET("/reservations/:reservation_id", r.Read, api...)
	e.PUT("/reservations/:reservation_id", r.Update, api...)
	e.PUT("/reservations/:reservation_id/status", r.UpdateStatus, api...)

	t := o.Tables
	e.GET("/tables", t.List, api...)
	e.POST("/tables", t.Create, api...)
	e.GET("/tables/:table_id", t.Read, api...)
	e.PUT("/tables/:table_id/seat", t.Seat, api...)
	e.DELETE("/tables/:table_id/seat", t.Clear, api...)
}
