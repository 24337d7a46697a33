package repository

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/table-reservation/internal/geo"
	"github.com/iliyamo/table-reservation/internal/model"
)

// MemoryStore is an in-process Store used by tests and by the server
// when it runs without MySQL.  Transactions are serialised on one lock
// and work on a copy of the data that replaces the original only on
// commit.
type MemoryStore struct {
	mu   sync.RWMutex
	data *memData
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData()}
}

type memData struct {
	seq          uint64
	restaurants  map[uint64]model.Restaurant
	tables       map[uint64]model.Table
	users        map[uint64]model.User
	bookings     map[uint64]model.Booking
	reservations map[uint64]model.Reservation
	feedback     map[uint64]model.Feedback
}

func newMemData() *memData {
	return &memData{
		restaurants:  map[uint64]model.Restaurant{},
		tables:       map[uint64]model.Table{},
		users:        map[uint64]model.User{},
		bookings:     map[uint64]model.Booking{},
		reservations: map[uint64]model.Reservation{},
		feedback:     map[uint64]model.Feedback{},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		seq:          d.seq,
		restaurants:  maps.Clone(d.restaurants),
		tables:       maps.Clone(d.tables),
		users:        maps.Clone(d.users),
		bookings:     maps.Clone(d.bookings),
		reservations: maps.Clone(d.reservations),
		feedback:     maps.Clone(d.feedback),
	}
}

// nextID hands out ids from one sequence shared by every table; ids
// stay unique per table which is all callers rely on.
func (d *memData) nextID() uint64 {
	d.seq++
	return d.seq
}

// WithTx runs fn against a private copy of the data and publishes the
// copy only when fn succeeds.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(q Queries) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *MemoryStore) read() (*memData, func()) {
	s.mu.RLock()
	return s.data, s.mu.RUnlock
}

func (s *MemoryStore) write() (*memData, func()) {
	s.mu.Lock()
	return s.data, s.mu.Unlock
}

func (s *MemoryStore) GetRestaurant(ctx context.Context, id uint64) (model.Restaurant, error) {
	d, done := s.read()
	defer done()
	return d.GetRestaurant(ctx, id)
}

func (s *MemoryStore) RestaurantsByName(ctx context.Context, name string, limit int) ([]model.Restaurant, error) {
	d, done := s.read()
	defer done()
	return d.RestaurantsByName(ctx, name, limit)
}

func (s *MemoryStore) RestaurantsInArea(ctx context.Context, area string, limit int) ([]model.Restaurant, error) {
	d, done := s.read()
	defer done()
	return d.RestaurantsInArea(ctx, area, limit)
}

func (s *MemoryStore) RestaurantsInBox(ctx context.Context, box geo.Box) ([]model.Restaurant, error) {
	d, done := s.read()
	defer done()
	return d.RestaurantsInBox(ctx, box)
}

func (s *MemoryStore) UserExists(ctx context.Context, id uint64) (bool, error) {
	d, done := s.read()
	defer done()
	return d.UserExists(ctx, id)
}

func (s *MemoryStore) AvailableTables(ctx context.Context, restaurantID uint64, start, end time.Time) ([]model.Table, error) {
	d, done := s.read()
	defer done()
	return d.AvailableTables(ctx, restaurantID, start, end)
}

func (s *MemoryStore) CountConflicts(ctx context.Context, tableIDs []uint64, start, end time.Time) (int, error) {
	d, done := s.read()
	defer done()
	return d.CountConflicts(ctx, tableIDs, start, end)
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	d, done := s.write()
	defer done()
	return d.CreateBooking(ctx, b)
}

func (s *MemoryStore) CreateReservations(ctx context.Context, bookingID uint64, tableIDs []uint64) ([]model.Reservation, error) {
	d, done := s.write()
	defer done()
	return d.CreateReservations(ctx, bookingID, tableIDs)
}

func (s *MemoryStore) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	d, done := s.read()
	defer done()
	return d.GetBooking(ctx, id)
}

func (s *MemoryStore) ReservationIDs(ctx context.Context, bookingID uint64) ([]uint64, error) {
	d, done := s.read()
	defer done()
	return d.ReservationIDs(ctx, bookingID)
}

func (s *MemoryStore) DeleteBooking(ctx context.Context, id uint64) error {
	d, done := s.write()
	defer done()
	return d.DeleteBooking(ctx, id)
}

func (s *MemoryStore) FeedbackByBooking(ctx context.Context, bookingID uint64) (model.Feedback, error) {
	d, done := s.read()
	defer done()
	return d.FeedbackByBooking(ctx, bookingID)
}

func (s *MemoryStore) CreateFeedback(ctx context.Context, f *model.Feedback) error {
	d, done := s.write()
	defer done()
	return d.CreateFeedback(ctx, f)
}

func (s *MemoryStore) UpdateFeedback(ctx context.Context, f *model.Feedback) error {
	d, done := s.write()
	defer done()
	return d.UpdateFeedback(ctx, f)
}

func (s *MemoryStore) LatestFeedbackByUser(ctx context.Context, userID uint64, limit int) ([]model.Feedback, error) {
	d, done := s.read()
	defer done()
	return d.LatestFeedbackByUser(ctx, userID, limit)
}

func (s *MemoryStore) LatestFeedbackByRestaurant(ctx context.Context, restaurantID uint64, limit int) ([]model.Feedback, error) {
	d, done := s.read()
	defer done()
	return d.LatestFeedbackByRestaurant(ctx, restaurantID, limit)
}

// CreateRestaurant stores r and fills in its ID.
func (s *MemoryStore) CreateRestaurant(_ context.Context, r *model.Restaurant) error {
	d, done := s.write()
	defer done()
	r.ID = d.nextID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	d.restaurants[r.ID] = *r
	return nil
}

// CreateTable stores t; table numbers are unique per restaurant.
func (s *MemoryStore) CreateTable(_ context.Context, t *model.Table) error {
	d, done := s.write()
	defer done()
	for _, other := range d.tables {
		if other.RestaurantID == t.RestaurantID && other.TableNo == t.TableNo {
			return fmt.Errorf("%w: table %d of restaurant %d", ErrDuplicate, t.TableNo, t.RestaurantID)
		}
	}
	if t.Seats == 0 {
		t.Seats = model.DefaultTableSeats
	}
	t.ID = d.nextID()
	d.tables[t.ID] = *t
	return nil
}

// CreateUser stores u; phone numbers are unique.
func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	d, done := s.write()
	defer done()
	for _, other := range d.users {
		if other.Phone == u.Phone {
			return fmt.Errorf("%w: phone %s", ErrDuplicate, u.Phone)
		}
	}
	u.ID = d.nextID()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	d.users[u.ID] = *u
	return nil
}

// The memData methods below implement Queries without locking; the
// MemoryStore wrappers or WithTx hold the lock around them.

func (d *memData) GetRestaurant(_ context.Context, id uint64) (model.Restaurant, error) {
	r, ok := d.restaurants[id]
	if !ok {
		return model.Restaurant{}, ErrNotFound
	}
	return r, nil
}

func (d *memData) RestaurantsByName(_ context.Context, name string, limit int) ([]model.Restaurant, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	return d.filterRestaurants(limit, func(r model.Restaurant) bool {
		return strings.Contains(strings.ToLower(r.Name), needle)
	}), nil
}

func (d *memData) RestaurantsInArea(_ context.Context, area string, limit int) ([]model.Restaurant, error) {
	needle := strings.ToLower(strings.TrimSpace(area))
	return d.filterRestaurants(limit, func(r model.Restaurant) bool {
		return strings.Contains(strings.ToLower(r.Area), needle)
	}), nil
}

func (d *memData) RestaurantsInBox(_ context.Context, box geo.Box) ([]model.Restaurant, error) {
	return d.filterRestaurants(0, func(r model.Restaurant) bool {
		return box.Contains(geo.Point{Lat: r.Latitude, Lon: r.Longitude})
	}), nil
}

func (d *memData) filterRestaurants(limit int, keep func(model.Restaurant) bool) []model.Restaurant {
	out := make([]model.Restaurant, 0)
	for _, id := range slices.Sorted(maps.Keys(d.restaurants)) {
		r := d.restaurants[id]
		if !keep(r) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (d *memData) UserExists(_ context.Context, id uint64) (bool, error) {
	_, ok := d.users[id]
	return ok, nil
}

// busyTables returns the ids of tables held by a confirmed booking that
// overlaps [start, end).
func (d *memData) busyTables(start, end time.Time) map[uint64]bool {
	busy := map[uint64]bool{}
	for _, res := range d.reservations {
		b, ok := d.bookings[res.BookingID]
		if ok && b.Status == model.BookingStatusConfirmed && b.Overlaps(start, end) {
			busy[res.TableID] = true
		}
	}
	return busy
}

func (d *memData) AvailableTables(_ context.Context, restaurantID uint64, start, end time.Time) ([]model.Table, error) {
	busy := d.busyTables(start, end)
	out := make([]model.Table, 0)
	for _, t := range d.tables {
		if t.RestaurantID == restaurantID && !busy[t.ID] {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b model.Table) int {
		return cmp.Or(cmp.Compare(a.TableNo, b.TableNo), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (d *memData) CountConflicts(_ context.Context, tableIDs []uint64, start, end time.Time) (int, error) {
	n := 0
	for _, res := range d.reservations {
		if !slices.Contains(tableIDs, res.TableID) {
			continue
		}
		b, ok := d.bookings[res.BookingID]
		if ok && b.Status == model.BookingStatusConfirmed && b.Overlaps(start, end) {
			n++
		}
	}
	return n, nil
}

func (d *memData) CreateBooking(_ context.Context, b *model.Booking) error {
	if b.Status == "" {
		b.Status = model.BookingStatusConfirmed
	}
	b.ID = d.nextID()
	b.CreatedAt = time.Now().UTC()
	d.bookings[b.ID] = *b
	return nil
}

func (d *memData) CreateReservations(_ context.Context, bookingID uint64, tableIDs []uint64) ([]model.Reservation, error) {
	if _, ok := d.bookings[bookingID]; !ok {
		return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}
	now := time.Now().UTC()
	out := make([]model.Reservation, 0, len(tableIDs))
	for _, tid := range tableIDs {
		if _, ok := d.tables[tid]; !ok {
			return nil, fmt.Errorf("table %d: %w", tid, ErrNotFound)
		}
		r := model.Reservation{ID: d.nextID(), BookingID: bookingID, TableID: tid, CreatedAt: now}
		d.reservations[r.ID] = r
		out = append(out, r)
	}
	return out, nil
}

func (d *memData) GetBooking(_ context.Context, id uint64) (model.Booking, error) {
	b, ok := d.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return b, nil
}

func (d *memData) ReservationIDs(_ context.Context, bookingID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	for id, r := range d.reservations {
		if r.BookingID == bookingID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (d *memData) DeleteBooking(_ context.Context, id uint64) error {
	if _, ok := d.bookings[id]; !ok {
		return ErrNotFound
	}
	maps.DeleteFunc(d.reservations, func(_ uint64, r model.Reservation) bool { return r.BookingID == id })
	maps.DeleteFunc(d.feedback, func(_ uint64, f model.Feedback) bool { return f.BookingID == id })
	delete(d.bookings, id)
	return nil
}

func (d *memData) FeedbackByBooking(_ context.Context, bookingID uint64) (model.Feedback, error) {
	for _, f := range d.feedback {
		if f.BookingID == bookingID {
			return f, nil
		}
	}
	return model.Feedback{}, ErrNotFound
}

func (d *memData) CreateFeedback(ctx context.Context, f *model.Feedback) error {
	if _, err := d.FeedbackByBooking(ctx, f.BookingID); err == nil {
		return fmt.Errorf("%w: feedback for booking %d", ErrDuplicate, f.BookingID)
	}
	f.ID = d.nextID()
	f.CreatedAt = time.Now().UTC()
	d.feedback[f.ID] = *f
	return nil
}

func (d *memData) UpdateFeedback(_ context.Context, f *model.Feedback) error {
	cur, ok := d.feedback[f.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Stars = f.Stars
	cur.Text = f.Text
	cur.CreatedAt = time.Now().UTC()
	f.CreatedAt = cur.CreatedAt
	d.feedback[f.ID] = cur
	return nil
}

func (d *memData) LatestFeedbackByUser(_ context.Context, userID uint64, limit int) ([]model.Feedback, error) {
	return d.latestFeedback(limit, func(f model.Feedback) bool { return f.UserID == userID }), nil
}

func (d *memData) LatestFeedbackByRestaurant(_ context.Context, restaurantID uint64, limit int) ([]model.Feedback, error) {
	return d.latestFeedback(limit, func(f model.Feedback) bool { return f.RestaurantID == restaurantID }), nil
}

func (d *memData) latestFeedback(limit int, keep func(model.Feedback) bool) []model.Feedback {
	out := make([]model.Feedback, 0)
	for _, f := range d.feedback {
		if keep(f) {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b model.Feedback) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
