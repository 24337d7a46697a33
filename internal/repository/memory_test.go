package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/geo"
	"github.com/iliyamo/table-reservation/internal/model"
)

func seedMemory(t *testing.T, tables int) (*MemoryStore, model.Restaurant, model.User) {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()
	r := model.Restaurant{Name: "GoodFoods Cravings Adyar 01", Area: "Adyar", Latitude: 13.01, Longitude: 80.22}
	require.NoError(t, s.CreateRestaurant(ctx, &r))
	for i := tables; i >= 1; i-- {
		require.NoError(t, s.CreateTable(ctx, &model.Table{RestaurantID: r.ID, TableNo: i}))
	}
	u := model.User{Name: "Asha", Phone: "9000000001"}
	require.NoError(t, s.CreateUser(ctx, &u))
	return s, r, u
}

func book(t *testing.T, s *MemoryStore, r model.Restaurant, u model.User, start, end time.Time, tableIDs ...uint64) model.Booking {
	t.Helper()
	var b model.Booking
	err := s.WithTx(context.Background(), func(q Queries) error {
		b = model.Booking{UserID: u.ID, RestaurantID: r.ID, Start: start, End: end, Guests: 2}
		if err := q.CreateBooking(context.Background(), &b); err != nil {
			return err
		}
		_, err := q.CreateReservations(context.Background(), b.ID, tableIDs)
		return err
	})
	require.NoError(t, err)
	return b
}

func TestMemoryAvailableTablesOrderedAndFiltered(t *testing.T) {
	ctx := context.Background()
	s, r, u := seedMemory(t, 4)
	start := time.Date(2025, 12, 1, 13, 30, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	free, err := s.AvailableTables(ctx, r.ID, start, end)
	require.NoError(t, err)
	require.Len(t, free, 4)
	for i, tb := range free {
		require.Equal(t, i+1, tb.TableNo)
		require.Equal(t, model.DefaultTableSeats, tb.Seats)
	}

	book(t, s, r, u, start, end, free[1].ID)

	free, err = s.AvailableTables(ctx, r.ID, start.Add(time.Hour), end.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 4}, tableNos(free))

	// touching windows do not conflict
	free, err = s.AvailableTables(ctx, r.ID, end, end.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, free, 4)

	n, err := s.CountConflicts(ctx, []uint64{free[0].ID, free[1].ID}, start, end)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestMemoryWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s, r, u := seedMemory(t, 2)
	boom := errors.New("boom")
	err := s.WithTx(ctx, func(q Queries) error {
		b := model.Booking{UserID: u.ID, RestaurantID: r.ID, Start: time.Now(), End: time.Now().Add(time.Hour), Guests: 1}
		require.NoError(t, q.CreateBooking(ctx, &b))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, s.data.bookings)
}

func TestMemoryWithTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s, r, u := seedMemory(t, 2)
	require.Panics(t, func() {
		_ = s.WithTx(ctx, func(q Queries) error {
			b := model.Booking{UserID: u.ID, RestaurantID: r.ID, Start: time.Now(), End: time.Now().Add(time.Hour), Guests: 1}
			_ = q.CreateBooking(ctx, &b)
			panic("mid-transaction")
		})
	})
	require.Empty(t, s.data.bookings)
	// the lock was released
	_, err := s.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
}

func TestMemoryDeleteBookingCascades(t *testing.T) {
	ctx := context.Background()
	s, r, u := seedMemory(t, 3)
	free, err := s.AvailableTables(ctx, r.ID, time.Unix(0, 0), time.Unix(3600, 0))
	require.NoError(t, err)
	b := book(t, s, r, u, time.Unix(0, 0), time.Unix(3600, 0), free[0].ID, free[1].ID)

	f := model.Feedback{BookingID: b.ID, UserID: u.ID, RestaurantID: r.ID, Stars: 4}
	require.NoError(t, s.CreateFeedback(ctx, &f))
	require.ErrorIs(t, s.CreateFeedback(ctx, &model.Feedback{BookingID: b.ID, Stars: 5}), ErrDuplicate)

	ids, err := s.ReservationIDs(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	require.NoError(t, s.WithTx(ctx, func(q Queries) error { return q.DeleteBooking(ctx, b.ID) }))
	_, err = s.GetBooking(ctx, b.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.FeedbackByBooking(ctx, b.ID)
	require.ErrorIs(t, err, ErrNotFound)
	ids, err = s.ReservationIDs(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.ErrorIs(t, s.DeleteBooking(ctx, b.ID), ErrNotFound)
}

func TestMemoryRestaurantSearches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, r := range []model.Restaurant{
		{Name: "GoodFoods Spice Adyar 02", Area: "Adyar", Latitude: 13.0125, Longitude: 80.2218},
		{Name: "GoodFoods Tandoor Velachery 03", Area: "Velachery", Latitude: 12.98, Longitude: 80.22},
		{Name: "GoodFoods Spice Guindy 04", Area: "Guindy", Latitude: 13.01, Longitude: 80.21},
	} {
		require.NoError(t, s.CreateRestaurant(ctx, &r))
	}

	got, err := s.RestaurantsByName(ctx, "SPICE", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Less(t, got[0].ID, got[1].ID)

	got, err = s.RestaurantsByName(ctx, "spice", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.RestaurantsInArea(ctx, "velach", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.RestaurantsInBox(ctx, geo.BoundingBox(geo.Point{Lat: 13.01, Lon: 80.22}, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestMemoryLatestFeedback(t *testing.T) {
	ctx := context.Background()
	s, r, u := seedMemory(t, 1)
	for i := 0; i < 7; i++ {
		start := time.Unix(int64(i)*7200, 0)
		b := book(t, s, r, u, start, start.Add(time.Hour))
		require.NoError(t, s.CreateFeedback(ctx, &model.Feedback{BookingID: b.ID, UserID: u.ID, RestaurantID: r.ID, Stars: 1 + i%5}))
	}
	got, err := s.LatestFeedbackByUser(ctx, u.ID, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		require.False(t, got[i].CreatedAt.After(got[i-1].CreatedAt))
	}
	got, err = s.LatestFeedbackByRestaurant(ctx, r.ID+1000, 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s, r, _ := seedMemory(t, 2)
	require.ErrorIs(t, s.CreateTable(ctx, &model.Table{RestaurantID: r.ID, TableNo: 1}), ErrDuplicate)
	require.ErrorIs(t, s.CreateUser(ctx, &model.User{Phone: "9000000001"}), ErrDuplicate)
}

func tableNos(ts []model.Table) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.TableNo
	}
	return out
}
