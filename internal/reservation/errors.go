package reservation

import (
	"errors"
	"fmt"

	"github.com/iliyamo/table-reservation/internal/repository"
)

// Error kinds returned by the engine.  Callers match them with
// errors.Is; the engine wraps them with detail via fmt.Errorf("%w: ...").
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidWindow     = errors.New("start must be before end")
	ErrInvalidGuests     = errors.New("guests must be positive")
	ErrInvalidRating     = errors.New("stars must be between 1 and 5")
	ErrNotEnoughCapacity = errors.New("not enough free tables")
	ErrNoContiguousBlock = errors.New("no contiguous tables available")
	ErrConflict          = errors.New("conflict detected, please try again")
	ErrUnauthorized      = errors.New("booking belongs to another user")
	ErrMissingParams     = errors.New("missing parameters")
	ErrNoMatch           = errors.New("no match")
)

// KindInternal is reported for anything outside the taxonomy, such as
// storage failures.
const KindInternal = "internal"

var kinds = []struct {
	err  error
	code string
}{
	{ErrNotFound, "not_found"},
	{ErrInvalidWindow, "invalid_window"},
	{ErrInvalidGuests, "invalid_guests"},
	{ErrInvalidRating, "invalid_rating"},
	{ErrNotEnoughCapacity, "not_enough_capacity"},
	{ErrNoContiguousBlock, "no_contiguous_block"},
	{ErrConflict, "conflict"},
	{ErrUnauthorized, "unauthorized"},
	{ErrMissingParams, "missing_params"},
	{ErrNoMatch, "no_match"},
}

// KindOf returns the stable code for err, "" for nil and KindInternal
// for errors outside the taxonomy.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return KindInternal
}

// Retryable reports whether the caller should simply try again.  Only a
// recheck conflict qualifies.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// notFound maps the repository sentinel onto ErrNotFound and leaves
// everything else untouched.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return wrap(ErrNotFound, "%s", what)
	}
	return err
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{kind}, args...)...)
}
