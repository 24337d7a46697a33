package reservation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/repository"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, "", KindOf(nil))
	require.Equal(t, "conflict", KindOf(wrap(ErrConflict, "x")))
	require.Equal(t, "no_match", KindOf(fmt.Errorf("outer: %w", wrap(ErrNoMatch, "x"))))
	require.Equal(t, KindInternal, KindOf(errors.New("disk full")))
	require.Equal(t, "not_found", KindOf(notFound(repository.ErrNotFound, "booking 1")))
	require.Equal(t, KindInternal, KindOf(notFound(errors.New("io"), "booking 1")))
}

func TestRetryable(t *testing.T) {
	require.True(t, Retryable(wrap(ErrConflict, "x")))
	for _, err := range []error{ErrNotEnoughCapacity, ErrNoContiguousBlock, ErrNotFound, errors.New("io")} {
		require.False(t, Retryable(err))
	}
}
