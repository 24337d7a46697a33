// Package reservation is the table allocation engine: availability
// queries, the table allocator, per-restaurant guards around the booking
// transaction, the look-ahead slot scanner, nearby-restaurant ranking and
// the cancellation and feedback lifecycle.
package reservation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// EventPublisher receives domain events after a transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Config tunes the engine.  Zero fields take the defaults below.
type Config struct {
	TableSize       int           // guests per table, 6
	DefaultWindow   time.Duration // booking length when no end is given, 2h
	SlotStep        time.Duration // slot scanner step, 15m
	SlotLookahead   time.Duration // slot scanner horizon (inclusive), 3h
	SlotLimit       int           // alternatives returned, 3
	NearbyLimit     int           // nearby results, 5
	DefaultRadiusKm float64       // nearby radius, 10
	SearchLimit     int           // name search results, 5
	AreaLimit       int           // area listing results, 50
	FeedbackLimit   int           // latest feedback rows, 5
	PublishTimeout  time.Duration // per event, 3s
}

func (c Config) withDefaults() Config {
	if c.TableSize <= 0 {
		c.TableSize = DefaultTableSize
	}
	if c.DefaultWindow <= 0 {
		c.DefaultWindow = 2 * time.Hour
	}
	if c.SlotStep <= 0 {
		c.SlotStep = 15 * time.Minute
	}
	if c.SlotLookahead <= 0 {
		c.SlotLookahead = 3 * time.Hour
	}
	if c.SlotLimit <= 0 {
		c.SlotLimit = 3
	}
	if c.NearbyLimit <= 0 {
		c.NearbyLimit = 5
	}
	if c.DefaultRadiusKm <= 0 {
		c.DefaultRadiusKm = 10
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 5
	}
	if c.AreaLimit <= 0 {
		c.AreaLimit = 50
	}
	if c.FeedbackLimit <= 0 {
		c.FeedbackLimit = 5
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 3 * time.Second
	}
	return c
}

// Engine serves every reservation operation.  It owns the guard
// registry, so two Engines over the same store do not exclude each
// other; run one per process.
type Engine struct {
	store  repository.Store
	events EventPublisher
	log    *zap.Logger
	cfg    Config
	guards guards
}

// New builds an Engine.  events and logger may be nil.
func New(store repository.Store, events EventPublisher, logger *zap.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		events: events,
		log:    logger.Named("reservation"),
		cfg:    cfg.withDefaults(),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// publish sends ev best effort.  It runs after commit, so a broker
// failure is logged and never reaches the caller.
func (e *Engine) publish(ctx context.Context, ev queue.BookingEvent) {
	if e.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.PublishTimeout)
	defer cancel()
	if err := e.events.Publish(ctx, ev); err != nil {
		e.log.Warn("publish event failed",
			zap.String("type", ev.Type), zap.Uint64("booking_id", ev.BookingID), zap.Error(err))
	}
}
