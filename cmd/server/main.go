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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/logging"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/reservation"
	"github.com/iliyamo/table-reservation/internal/router"
	"github.com/iliyamo/table-reservation/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup("table-reservation", cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer closeStore()

	// Redis is optional: without it rate limiting and caching pass through.
	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable; rate limit and cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	} else {
		defer func() { _ = rdb.Close() }()
	}

	var events reservation.EventPublisher
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.AMQPURL, logger)
		defer func() { _ = pub.Close() }()
		events = pub
	}
	if cfg.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLogPath, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	engine := reservation.New(store, events, logger, reservation.Config{
		TableSize:     cfg.Engine.TableSize,
		DefaultWindow: cfg.Engine.DefaultWindow,
		SlotStep:      cfg.Engine.SlotStep,
		SlotLookahead: cfg.Engine.SlotLookahead,
		SlotLimit:     cfg.Engine.SlotLimit,
	})
	bookings := handler.NewReservationHandler(engine)
	catalog := handler.NewCatalogHandler(engine)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

	limiter := middleware.NewTokenBucket(cfg.RateLimit, rdb, logger)
	router.RegisterRoutes(e)
	router.RegisterPublic(e, catalog, bookings,
		middleware.Identity(),
		limiter,
		middleware.NewRedisCache(cfg.Cache, rdb),
	)
	router.RegisterBookings(e, bookings, catalog, middleware.Identity(), limiter)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// openStore returns the configured store and a func releasing it.  The
// memory store is loaded with the demo dataset so the API is usable
// without MySQL.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		store := repository.NewMemoryStore()
		sum, err := seed.Run(ctx, store, time.Now())
		if err != nil {
			return nil, nil, fmt.Errorf("seed memory store: %w", err)
		}
		logger.Info("memory store seeded",
			zap.Int("restaurants", sum.Restaurants), zap.Int("bookings", sum.Bookings))
		return store, func() {}, nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return repository.NewMySQLStore(db), func() { _ = db.Close() }, nil
}
