// Command seed loads the deterministic demo dataset into MySQL.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/logging"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup("table-reservation-seed", cfg.Env)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	sum, err := seed.Run(ctx, repository.NewMySQLStore(db), time.Now())
	if errors.Is(err, repository.ErrDuplicate) {
		logger.Fatal("database already seeded; drop the tables to reseed", zap.Error(err))
	}
	if err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	logger.Info("seeding completed",
		zap.Int("restaurants", sum.Restaurants),
		zap.Int("tables", sum.Tables),
		zap.Int("users", sum.Users),
		zap.Int("bookings", sum.Bookings),
		zap.Int("feedback", sum.Feedback),
		zap.Uint64("flagship_id", sum.FlagshipID),
		zap.Uint64s("nearby_ids", sum.NearbyIDs),
		zap.Uint64s("busy_booking_ids", sum.BusyBookingIDs),
	)
}
