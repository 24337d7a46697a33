package reservation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// CancelResult lists what a cancellation freed.
type CancelResult struct {
	BookingID      uint64
	ReservationIDs []uint64
}

// Cancel deletes a booking owned by userID together with its
// reservations and feedback in one transaction.
func (e *Engine) Cancel(ctx context.Context, bookingID, userID uint64) (CancelResult, error) {
	var (
		out     CancelResult
		booking model.Booking
	)
	err := e.store.WithTx(ctx, func(q repository.Queries) error {
		var err error
		booking, err = q.GetBooking(ctx, bookingID)
		if err != nil {
			return notFound(err, fmt.Sprintf("booking %d", bookingID))
		}
		if booking.UserID != userID {
			return wrap(ErrUnauthorized, "booking %d", bookingID)
		}
		ids, err := q.ReservationIDs(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("list reservations: %w", err)
		}
		if err := q.DeleteBooking(ctx, bookingID); err != nil {
			return notFound(err, fmt.Sprintf("booking %d", bookingID))
		}
		out = CancelResult{BookingID: bookingID, ReservationIDs: ids}
		return nil
	})
	if err != nil {
		return CancelResult{}, err
	}

	e.log.Info("booking cancelled",
		zap.Uint64("booking_id", bookingID),
		zap.Int("reservations", len(out.ReservationIDs)))

	ev := queue.NewBookingEvent(queue.EventBookingCancelled)
	ev.BookingID = bookingID
	ev.UserID = booking.UserID
	ev.RestaurantID = booking.RestaurantID
	ev.ReservationIDs = out.ReservationIDs
	e.publish(ctx, ev)
	return out, nil
}

// FeedbackRequest rates a booking.
type FeedbackRequest struct {
	BookingID uint64
	UserID    uint64
	Stars     int
	Text      string
}

// FeedbackResult is the stored feedback and whether it replaced an
// earlier one.
type FeedbackResult struct {
	Feedback model.Feedback
	Updated  bool
}

// SubmitFeedback creates the booking's feedback or overwrites the
// existing one in place.  The rating is validated before any lookup.
func (e *Engine) SubmitFeedback(ctx context.Context, req FeedbackRequest) (FeedbackResult, error) {
	if req.Stars < 1 || req.Stars > 5 {
		return FeedbackResult{}, wrap(ErrInvalidRating, "got %d", req.Stars)
	}
	var out FeedbackResult
	err := e.store.WithTx(ctx, func(q repository.Queries) error {
		booking, err := q.GetBooking(ctx, req.BookingID)
		if err != nil {
			return notFound(err, fmt.Sprintf("booking %d", req.BookingID))
		}
		if booking.UserID != req.UserID {
			return wrap(ErrUnauthorized, "booking %d", req.BookingID)
		}

		existing, err := q.FeedbackByBooking(ctx, req.BookingID)
		switch {
		case err == nil:
			out, err = overwriteFeedback(ctx, q, existing, req)
			return err
		case errors.Is(err, repository.ErrNotFound):
			f := model.Feedback{
				BookingID:    booking.ID,
				UserID:       booking.UserID,
				RestaurantID: booking.RestaurantID,
				Stars:        req.Stars,
				Text:         req.Text,
			}
			err := q.CreateFeedback(ctx, &f)
			if errors.Is(err, repository.ErrDuplicate) {
				// a concurrent submission inserted first; overwrite it
				existing, err := q.FeedbackByBooking(ctx, req.BookingID)
				if err != nil {
					return fmt.Errorf("reload feedback: %w", err)
				}
				out, err = overwriteFeedback(ctx, q, existing, req)
				return err
			}
			if err != nil {
				return fmt.Errorf("insert feedback: %w", err)
			}
			out = FeedbackResult{Feedback: f}
			return nil
		default:
			return fmt.Errorf("lookup feedback: %w", err)
		}
	})
	if err != nil {
		return FeedbackResult{}, err
	}

	ev := queue.NewBookingEvent(queue.EventFeedbackSubmitted)
	ev.BookingID = out.Feedback.BookingID
	ev.UserID = out.Feedback.UserID
	ev.RestaurantID = out.Feedback.RestaurantID
	ev.Stars = out.Feedback.Stars
	e.publish(ctx, ev)
	return out, nil
}

func overwriteFeedback(ctx context.Context, q repository.Queries, f model.Feedback, req FeedbackRequest) (FeedbackResult, error) {
	f.Stars = req.Stars
	f.Text = req.Text
	if err := q.UpdateFeedback(ctx, &f); err != nil {
		return FeedbackResult{}, fmt.Errorf("update feedback: %w", err)
	}
	return FeedbackResult{Feedback: f, Updated: true}, nil
}
