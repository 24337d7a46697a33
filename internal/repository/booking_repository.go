package repository

import (
	"context"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// AvailableTables is a single set-difference query: a table is free when
// no confirmed booking that holds it overlaps [start, end).
func (s sqlQueries) AvailableTables(ctx context.Context, restaurantID uint64, start, end time.Time) ([]model.Table, error) {
	const q = `
        SELECT t.id, t.restaurant_id, t.table_no, t.seats
          FROM restaurant_tables t
         WHERE t.restaurant_id = ?
           AND NOT EXISTS (
                SELECT 1
                  FROM reservations r
                  JOIN bookings b ON b.id = r.booking_id
                 WHERE r.table_id = t.id
                   AND b.status = ?
                   AND NOT (b.end_dt <= ? OR b.start_dt >= ?)
           )
         ORDER BY t.table_no, t.id`
	rows, err := s.q.QueryContext(ctx, q, restaurantID, model.BookingStatusConfirmed, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.TableNo, &t.Seats); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountConflicts is the narrow recheck run just before the inserts.
func (s sqlQueries) CountConflicts(ctx context.Context, tableIDs []uint64, start, end time.Time) (int, error) {
	if len(tableIDs) == 0 {
		return 0, nil
	}
	in, args := inClause(tableIDs)
	q := `SELECT COUNT(*)
            FROM reservations r
            JOIN bookings b ON b.id = r.booking_id
           WHERE r.table_id IN (` + in + `)
             AND b.status = ?
             AND NOT (b.end_dt <= ? OR b.start_dt >= ?)`
	args = append(args, model.BookingStatusConfirmed, start.UTC(), end.UTC())
	var n int
	if err := s.q.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateBooking inserts b and fills in ID and CreatedAt.
func (s sqlQueries) CreateBooking(ctx context.Context, b *model.Booking) error {
	if b.Status == "" {
		b.Status = model.BookingStatusConfirmed
	}
	b.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO bookings (user_id, restaurant_id, start_dt, end_dt, guests, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q, b.UserID, b.RestaurantID, b.Start.UTC(), b.End.UTC(),
		b.Guests, b.Status, b.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateReservations inserts one row per table.  Rows go in one at a
// time so that every generated id is read back exactly.
func (s sqlQueries) CreateReservations(ctx context.Context, bookingID uint64, tableIDs []uint64) ([]model.Reservation, error) {
	const q = `INSERT INTO reservations (booking_id, table_id, created_at) VALUES (?, ?, ?)`
	now := time.Now().UTC()
	out := make([]model.Reservation, 0, len(tableIDs))
	for _, tid := range tableIDs {
		res, err := s.q.ExecContext(ctx, q, bookingID, tid, now)
		if err != nil {
			return nil, mapDuplicate(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		out = append(out, model.Reservation{ID: uint64(id), BookingID: bookingID, TableID: tid, CreatedAt: now})
	}
	return out, nil
}

// GetBooking loads a booking by id.
func (s sqlQueries) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	const q = `SELECT id, user_id, restaurant_id, start_dt, end_dt, guests, status, created_at
	             FROM bookings WHERE id = ?`
	var b model.Booking
	err := s.q.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.UserID, &b.RestaurantID,
		&b.Start, &b.End, &b.Guests, &b.Status, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, mapNoRows(err)
	}
	return b, nil
}

// ReservationIDs lists the reservation ids of a booking in id order.
func (s sqlQueries) ReservationIDs(ctx context.Context, bookingID uint64) ([]uint64, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id FROM reservations WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteBooking removes the children explicitly before the booking
// itself; the foreign keys cascade as well but nothing relies on that.
func (s sqlQueries) DeleteBooking(ctx context.Context, id uint64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM reservations WHERE booking_id = ?`, id); err != nil {
		return err
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM feedbacks WHERE booking_id = ?`, id); err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
