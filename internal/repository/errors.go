// Package repository defines the persistence contract used by the
// reservation engine together with its MySQL and in-memory
// implementations.  The sentinel values below let higher layers tell
// a missing row apart from a storage failure without depending on
// database/sql.
package repository

import "errors"

// ErrNotFound is returned when a lookup by primary key (or by the
// booking a feedback belongs to) matches no row.  The engine maps it
// to its own not-found error.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key, such
// as a second feedback row for the same booking.
var ErrDuplicate = errors.New("duplicate")
