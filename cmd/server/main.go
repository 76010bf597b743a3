package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/clock"
	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/database"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/logging"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memory"
	"github.com/iliyamo/restaurant-reservation/internal/router"
	"github.com/iliyamo/restaurant-reservation/internal/validation"
	"github.com/iliyamo/restaurant-reservation/internal/version"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func run(cfg config.Config, logger *log.Logger) error {
	appLog := logging.Component(logger, "server")
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, db, err := openStore(startupCtx, cfg, appLog)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	ready := map[string]handler.Pinger{"storage": store}
	var rdb *redis.Client
	if cfg.RedisNeeded() {
		rdb, err = config.NewRedisClient(startupCtx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		ready["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	var events queue.Publisher = queue.NoopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitMQURL, logging.Component(logger, "events"))
	}

	clk := clock.NewSystem()
	m := metrics.New()
	deps := handler.Deps{
		Store:     store,
		Validator: validation.New(cfg.Schedule.Validation(), clk),
		Clock:     clk,
		Events:    events,
		Metrics:   m,
		Logger:    logging.Component(logger, "handler"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logging.Component(logger, "http"), m)

	opts := router.Options{
		Reservations: handler.NewReservationHandler(deps),
		Tables:       handler.NewTableHandler(deps),
		Ready:        handler.Ready(ready),
		Metrics:      m,
		Logger:       logging.Component(logger, "http"),
		Redis:        rdb,
		Cache:        cfg.Cache,
		RateLimit:    cfg.RateLimit,
	}
	if cfg.AuthEnabled {
		opts.Auth = handler.NewAuthHandler(cfg.StaffUsername, cfg.StaffPasswordHash, cfg.JWTSecret,
			time.Duration(cfg.AccessTTLMin)*time.Minute, clk, logging.Component(logger, "auth"))
		opts.JWTSecret = cfg.JWTSecret
	}
	router.RegisterRoutes(e, opts)

	addr := ":" + cfg.Port
	appLog.WithFields(log.Fields{
		"addr":    addr,
		"env":     cfg.Env,
		"storage": cfg.StorageDriver,
		"auth":    cfg.AuthEnabled,
		"events":  cfg.EventsEnabled,
		"build":   version.String(),
	}).Info("listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- e.Start(addr)
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		appLog.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.WithError(err).Warn("shutdown")
	}
	appLog.Info("server stopped")
	return nil
}

// openStore returns the configured storage. The *sql.DB is nil for the
// memory driver.
func openStore(ctx context.Context, cfg config.Config, logger *log.Entry) (handler.Store, *sql.DB, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.NewStore(), nil, nil
	}

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("migrations applied")
	}
	return repository.NewStore(db), db, nil
}
