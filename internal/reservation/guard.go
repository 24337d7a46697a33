package reservation

import (
	"context"
	"sync"
)

// guard is a mutex whose Lock can be abandoned through a context.
type guard chan struct{}

func newGuard() guard { return make(guard, 1) }

func (g guard) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case g <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g guard) unlock() { <-g }

// guards hands out one guard per restaurant.  Entries are created on
// first use and never removed.  Callers only ask for ids that exist in
// the restaurants table, which is small and fixed.
type guards struct {
	m sync.Map // uint64 -> guard
}

// get returns the guard for id.  Concurrent first calls for the same id
// all receive the single value that won LoadOrStore.
func (g *guards) get(id uint64) guard {
	if v, ok := g.m.Load(id); ok {
		return v.(guard)
	}
	v, _ := g.m.LoadOrStore(id, newGuard())
	return v.(guard)
}

// acquire blocks until the restaurant's guard is held or ctx ends.
func (g *guards) acquire(ctx context.Context, id uint64) (release func(), err error) {
	gd := g.get(id)
	if err := gd.lock(ctx); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(gd.unlock) }, nil
}
