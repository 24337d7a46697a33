package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

const feedbackColumns = `id, booking_id, user_id, restaurant_id, stars, text, created_at`

// FeedbackByBooking returns the feedback left for a booking.
func (s sqlQueries) FeedbackByBooking(ctx context.Context, bookingID uint64) (model.Feedback, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM feedbacks WHERE booking_id = ?`, bookingID)
	f, err := scanFeedback(row)
	if err != nil {
		return model.Feedback{}, mapNoRows(err)
	}
	return f, nil
}

// CreateFeedback inserts f.  A second row for the same booking violates
// the unique key and comes back as ErrDuplicate.
func (s sqlQueries) CreateFeedback(ctx context.Context, f *model.Feedback) error {
	f.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO feedbacks (booking_id, user_id, restaurant_id, stars, text, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q, f.BookingID, f.UserID, f.RestaurantID, f.Stars,
		nullString(f.Text), f.CreatedAt)
	if err != nil {
		return mapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// UpdateFeedback rewrites stars and text and refreshes created_at.
func (s sqlQueries) UpdateFeedback(ctx context.Context, f *model.Feedback) error {
	f.CreatedAt = time.Now().UTC()
	res, err := s.q.ExecContext(ctx,
		`UPDATE feedbacks SET stars = ?, text = ?, created_at = ? WHERE id = ?`,
		f.Stars, nullString(f.Text), f.CreatedAt, f.ID)
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

// LatestFeedbackByUser returns the newest feedback rows for a user.
func (s sqlQueries) LatestFeedbackByUser(ctx context.Context, userID uint64, limit int) ([]model.Feedback, error) {
	return s.listFeedback(ctx,
		`SELECT `+feedbackColumns+` FROM feedbacks WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
}

// LatestFeedbackByRestaurant returns the newest feedback rows for a restaurant.
func (s sqlQueries) LatestFeedbackByRestaurant(ctx context.Context, restaurantID uint64, limit int) ([]model.Feedback, error) {
	return s.listFeedback(ctx,
		`SELECT `+feedbackColumns+` FROM feedbacks WHERE restaurant_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		restaurantID, limit)
}

func (s sqlQueries) listFeedback(ctx context.Context, q string, args ...any) ([]model.Feedback, error) {
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Feedback, 0)
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanFeedback(sc scanner) (model.Feedback, error) {
	var f model.Feedback
	var text sql.NullString
	if err := sc.Scan(&f.ID, &f.BookingID, &f.UserID, &f.RestaurantID, &f.Stars, &text, &f.CreatedAt); err != nil {
		return model.Feedback{}, err
	}
	f.Text = text.String
	return f, nil
}
