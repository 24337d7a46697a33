package repository

import (
	"context"
	"time"

	"github.com/iliyamo/table-reservation/internal/geo"
	"github.com/iliyamo/table-reservation/internal/model"
)

// Queries is the set of reads and writes the reservation engine issues.
// The same interface is served outside a transaction (by a Store) and
// inside one (by the value handed to WithTx).
type Queries interface {
	// GetRestaurant returns ErrNotFound when id does not exist.
	GetRestaurant(ctx context.Context, id uint64) (model.Restaurant, error)
	// RestaurantsByName matches name case-insensitively as a substring,
	// ordered by id.  limit <= 0 means no limit.
	RestaurantsByName(ctx context.Context, name string, limit int) ([]model.Restaurant, error)
	// RestaurantsInArea matches area case-insensitively as a substring,
	// ordered by id.  limit <= 0 means no limit.
	RestaurantsInArea(ctx context.Context, area string, limit int) ([]model.Restaurant, error)
	// RestaurantsInBox returns every restaurant inside box.
	RestaurantsInBox(ctx context.Context, box geo.Box) ([]model.Restaurant, error)

	UserExists(ctx context.Context, id uint64) (bool, error)

	// AvailableTables returns the restaurant's tables that have no
	// confirmed booking overlapping [start, end), ordered by table_no.
	AvailableTables(ctx context.Context, restaurantID uint64, start, end time.Time) ([]model.Table, error)
	// CountConflicts counts confirmed reservations on tableIDs whose
	// booking overlaps [start, end).
	CountConflicts(ctx context.Context, tableIDs []uint64, start, end time.Time) (int, error)

	// CreateBooking inserts b and fills in its ID and CreatedAt.
	CreateBooking(ctx context.Context, b *model.Booking) error
	// CreateReservations inserts one row per table for bookingID and
	// returns them in the order of tableIDs.
	CreateReservations(ctx context.Context, bookingID uint64, tableIDs []uint64) ([]model.Reservation, error)
	GetBooking(ctx context.Context, id uint64) (model.Booking, error)
	ReservationIDs(ctx context.Context, bookingID uint64) ([]uint64, error)
	// DeleteBooking removes the booking together with its reservations
	// and feedback.  Run it inside WithTx.
	DeleteBooking(ctx context.Context, id uint64) error

	// FeedbackByBooking returns ErrNotFound when the booking has none.
	FeedbackByBooking(ctx context.Context, bookingID uint64) (model.Feedback, error)
	CreateFeedback(ctx context.Context, f *model.Feedback) error
	UpdateFeedback(ctx context.Context, f *model.Feedback) error
	LatestFeedbackByUser(ctx context.Context, userID uint64, limit int) ([]model.Feedback, error)
	LatestFeedbackByRestaurant(ctx context.Context, restaurantID uint64, limit int) ([]model.Feedback, error)
}

// Store is a Queries bound to the whole database plus a transaction
// boundary.  WithTx commits when fn returns nil and rolls back on any
// error or panic; nothing fn wrote survives a rollback.
type Store interface {
	Queries
	WithTx(ctx context.Context, fn func(q Queries) error) error
}

// Seeder adds the inserts needed to load reference data.  They are kept
// off Queries because the engine treats restaurants, tables and users
// as read-only.
type Seeder interface {
	Store
	CreateRestaurant(ctx context.Context, r *model.Restaurant) error
	CreateTable(ctx context.Context, t *model.Table) error
	CreateUser(ctx context.Context, u *model.User) error
}

var (
	_ Seeder  = (*MySQLStore)(nil)
	_ Seeder  = (*MemoryStore)(nil)
	_ Queries = (*memData)(nil)
)
