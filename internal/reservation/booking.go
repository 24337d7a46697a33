package reservation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// BookingRequest asks for tables at one restaurant for [Start, End).
type BookingRequest struct {
	UserID             uint64
	RestaurantID       uint64
	Start              time.Time
	End                time.Time
	Guests             int
	AllowNonContiguous bool
}

// TableAssignment is one reservation row of a confirmed booking.
type TableAssignment struct {
	ReservationID uint64
	TableID       uint64
	TableNo       int
}

// BookingResult describes a committed booking.
type BookingResult struct {
	BookingID    uint64
	RestaurantID uint64
	UserID       uint64
	Start        time.Time
	End          time.Time
	Guests       int
	Tables       []TableAssignment
}

// CreateBooking allocates tables and records the booking.  The whole
// read-allocate-recheck-insert sequence runs in one transaction while
// the restaurant's guard is held, so concurrent attempts against the
// same restaurant are serialised.  A zero End means Start plus
// DefaultWindow.
func (e *Engine) CreateBooking(ctx context.Context, req BookingRequest) (BookingResult, error) {
	if req.End.IsZero() {
		req.End = req.Start.Add(e.cfg.DefaultWindow)
	}
	if req.Guests <= 0 {
		return BookingResult{}, e.rejected(wrap(ErrInvalidGuests, "%d", req.Guests))
	}
	if !req.Start.Before(req.End) {
		return BookingResult{}, e.rejected(wrap(ErrInvalidWindow, "%s >= %s",
			req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339)))
	}

	// unknown ids never get a guard, so the registry stays bounded by
	// the restaurants table
	if _, err := e.store.GetRestaurant(ctx, req.RestaurantID); err != nil {
		return BookingResult{}, e.rejected(notFound(err, fmt.Sprintf("restaurant %d", req.RestaurantID)))
	}

	began := time.Now()
	release, err := e.guards.acquire(ctx, req.RestaurantID)
	if err != nil {
		return BookingResult{}, e.rejected(fmt.Errorf("acquire restaurant guard: %w", err))
	}
	defer release()
	var (
		res        BookingResult
		restaurant model.Restaurant
	)
	err = e.store.WithTx(ctx, func(q repository.Queries) error {
		var err error
		res, restaurant, err = e.allocate(ctx, q, req)
		return err
	})
	release()
	allocationDuration.WithLabelValues(resultLabel(err)).Observe(time.Since(began).Seconds())
	bookingAttempts.WithLabelValues(resultLabel(err)).Inc()

	if err != nil {
		e.log.Info("booking rejected",
			zap.Uint64("restaurant_id", req.RestaurantID),
			zap.Uint64("user_id", req.UserID),
			zap.Int("guests", req.Guests),
			zap.String("kind", KindOf(err)),
			zap.Error(err))
		return BookingResult{}, err
	}

	e.log.Info("booking confirmed",
		zap.Uint64("booking_id", res.BookingID),
		zap.Uint64("restaurant_id", res.RestaurantID),
		zap.Int("guests", res.Guests),
		zap.Int("tables", len(res.Tables)))

	ev := queue.NewBookingEvent(queue.EventBookingConfirmed)
	ev.BookingID = res.BookingID
	ev.UserID = res.UserID
	ev.RestaurantID = res.RestaurantID
	ev.RestaurantName = restaurant.Name
	ev.StartsAt = utils.FormatISO(res.Start)
	ev.EndsAt = utils.FormatISO(res.End)
	ev.Guests = res.Guests
	for _, t := range res.Tables {
		ev.TableNos = append(ev.TableNos, t.TableNo)
		ev.ReservationIDs = append(ev.ReservationIDs, t.ReservationID)
	}
	e.publish(ctx, ev)
	return res, nil
}

// allocate is the body of the booking transaction.
func (e *Engine) allocate(ctx context.Context, q repository.Queries, req BookingRequest) (BookingResult, model.Restaurant, error) {
	restaurant, err := q.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return BookingResult{}, model.Restaurant{}, notFound(err, fmt.Sprintf("restaurant %d", req.RestaurantID))
	}
	ok, err := q.UserExists(ctx, req.UserID)
	if err != nil {
		return BookingResult{}, restaurant, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return BookingResult{}, restaurant, wrap(ErrNotFound, "user %d", req.UserID)
	}

	required := RequiredTables(req.Guests, e.cfg.TableSize)
	free, err := q.AvailableTables(ctx, req.RestaurantID, req.Start, req.End)
	if err != nil {
		return BookingResult{}, restaurant, fmt.Errorf("available tables: %w", err)
	}
	if len(free) < required {
		return BookingResult{}, restaurant, wrap(ErrNotEnoughCapacity, "need %d, have %d", required, len(free))
	}

	chosen, err := Allocate(free, required, req.AllowNonContiguous)
	if err != nil {
		return BookingResult{}, restaurant, err
	}
	ids := make([]uint64, len(chosen))
	for i, t := range chosen {
		ids[i] = t.ID
	}

	conflicts, err := q.CountConflicts(ctx, ids, req.Start, req.End)
	if err != nil {
		return BookingResult{}, restaurant, fmt.Errorf("recheck: %w", err)
	}
	if conflicts > 0 {
		return BookingResult{}, restaurant, wrap(ErrConflict, "%d overlapping reservations", conflicts)
	}

	b := model.Booking{
		UserID:       req.UserID,
		RestaurantID: req.RestaurantID,
		Start:        req.Start,
		End:          req.End,
		Guests:       req.Guests,
		Status:       model.BookingStatusConfirmed,
	}
	if err := q.CreateBooking(ctx, &b); err != nil {
		return BookingResult{}, restaurant, fmt.Errorf("insert booking: %w", err)
	}
	rows, err := q.CreateReservations(ctx, b.ID, ids)
	if err != nil {
		return BookingResult{}, restaurant, fmt.Errorf("insert reservations: %w", err)
	}

	res := BookingResult{
		BookingID:    b.ID,
		RestaurantID: b.RestaurantID,
		UserID:       b.UserID,
		Start:        b.Start,
		End:          b.End,
		Guests:       b.Guests,
		Tables:       make([]TableAssignment, len(rows)),
	}
	for i, r := range rows {
		res.Tables[i] = TableAssignment{ReservationID: r.ID, TableID: r.TableID, TableNo: chosen[i].TableNo}
	}
	return res, restaurant, nil
}

// rejected records a request turned away before the transaction.
func (e *Engine) rejected(err error) error {
	bookingAttempts.WithLabelValues(resultLabel(err)).Inc()
	return err
}
