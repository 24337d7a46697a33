package reservation

import (
	"context"
	"iter"
	"time"
)

// NextSlots lazily yields start times after start, SlotStep apart and no
// later than start+SlotLookahead, at which a window of duration can seat
// guests.  It stops after SlotLimit hits, at the horizon, or at the
// first error, which it yields with a zero time.  Each range re-runs the
// scan from the beginning, and breaking out early is fine.
func (e *Engine) NextSlots(ctx context.Context, restaurantID uint64, start time.Time, duration time.Duration, guests int) iter.Seq2[time.Time, error] {
	return func(yield func(time.Time, error) bool) {
		horizon := start.Add(e.cfg.SlotLookahead)
		found := 0
		for t := start.Add(e.cfg.SlotStep); !t.After(horizon) && found < e.cfg.SlotLimit; t = t.Add(e.cfg.SlotStep) {
			if err := ctx.Err(); err != nil {
				yield(time.Time{}, err)
				return
			}
			slotScans.Inc()
			ok, err := e.SufficientCapacity(ctx, restaurantID, t, t.Add(duration), guests)
			if err != nil {
				yield(time.Time{}, err)
				return
			}
			if !ok {
				continue
			}
			found++
			if !yield(t, nil) {
				return
			}
		}
	}
}
