package reservation

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/iliyamo/table-reservation/internal/model"
)

// DefaultTableSize is the number of guests one table seats for sizing
// purposes, independent of the seats column.
const DefaultTableSize = 6

// RequiredTables is ceil(guests / tableSize).  A non-positive tableSize
// falls back to DefaultTableSize.
func RequiredTables(guests, tableSize int) int {
	if tableSize <= 0 {
		tableSize = DefaultTableSize
	}
	if guests <= 0 {
		return 0
	}
	return (guests + tableSize - 1) / tableSize
}

// Allocate picks required tables out of free.  It prefers the first run
// of consecutive table numbers in ascending order; when none exists it
// takes the first required tables if allowNonContiguous is set and
// fails with ErrNoContiguousBlock otherwise.  free is not modified.
func Allocate(free []model.Table, required int, allowNonContiguous bool) ([]model.Table, error) {
	if required <= 0 {
		return nil, fmt.Errorf("%w: %d tables requested", ErrInvalidGuests, required)
	}
	if len(free) < required {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughCapacity, required, len(free))
	}

	sorted := slices.Clone(free)
	slices.SortFunc(sorted, func(a, b model.Table) int {
		return cmp.Or(cmp.Compare(a.TableNo, b.TableNo), cmp.Compare(a.ID, b.ID))
	})

	for i := 0; i+required <= len(sorted); i++ {
		block := sorted[i : i+required]
		if contiguous(block) {
			return slices.Clone(block), nil
		}
	}
	if !allowNonContiguous {
		return nil, fmt.Errorf("%w: need %d adjacent tables", ErrNoContiguousBlock, required)
	}
	return slices.Clone(sorted[:required]), nil
}

func contiguous(block []model.Table) bool {
	for j := 1; j < len(block); j++ {
		if block[j].TableNo-block[j-1].TableNo != 1 {
			return false
		}
	}
	return true
}
