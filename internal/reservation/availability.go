package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Availability answers a CheckAvailability call.  NextSlots is filled
// only when the requested window cannot seat the party.
type Availability struct {
	RestaurantID uint64
	Start        time.Time
	End          time.Time
	Guests       int
	Available    bool
	NextSlots    []time.Time
}

// AvailableTables returns the restaurant's tables free for all of
// [start, end), ordered by table number.
func (e *Engine) AvailableTables(ctx context.Context, restaurantID uint64, start, end time.Time) ([]model.Table, error) {
	if !start.Before(end) {
		return nil, wrap(ErrInvalidWindow, "%s >= %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	free, err := e.store.AvailableTables(ctx, restaurantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("available tables: %w", err)
	}
	return free, nil
}

// SufficientCapacity reports whether enough tables are free to seat
// guests for the whole window.
func (e *Engine) SufficientCapacity(ctx context.Context, restaurantID uint64, start, end time.Time, guests int) (bool, error) {
	if guests <= 0 {
		return false, wrap(ErrInvalidGuests, "%d", guests)
	}
	free, err := e.AvailableTables(ctx, restaurantID, start, end)
	if err != nil {
		return false, err
	}
	return len(free) >= RequiredTables(guests, e.cfg.TableSize), nil
}

// CheckAvailability reports whether the window can seat guests and, if
// not, up to SlotLimit later start times of the same length that can.
// A zero end means start plus DefaultWindow.  Finding no alternatives
// is not an error.
func (e *Engine) CheckAvailability(ctx context.Context, restaurantID uint64, start, end time.Time, guests int) (Availability, error) {
	if end.IsZero() {
		end = start.Add(e.cfg.DefaultWindow)
	}
	if guests <= 0 {
		return Availability{}, wrap(ErrInvalidGuests, "%d", guests)
	}
	if !start.Before(end) {
		return Availability{}, wrap(ErrInvalidWindow, "%s >= %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if _, err := e.store.GetRestaurant(ctx, restaurantID); err != nil {
		return Availability{}, notFound(err, fmt.Sprintf("restaurant %d", restaurantID))
	}

	ok, err := e.SufficientCapacity(ctx, restaurantID, start, end, guests)
	if err != nil {
		return Availability{}, err
	}
	out := Availability{
		RestaurantID: restaurantID,
		Start:        start,
		End:          end,
		Guests:       guests,
		Available:    ok,
		NextSlots:    []time.Time{},
	}
	if ok {
		return out, nil
	}
	for slot, err := range e.NextSlots(ctx, restaurantID, start, end.Sub(start), guests) {
		if err != nil {
			return Availability{}, err
		}
		out.NextSlots = append(out.NextSlots, slot)
	}
	return out, nil
}
