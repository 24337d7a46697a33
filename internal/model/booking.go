package model

import "time"

// BookingStatusConfirmed is the only status a stored booking carries.
// Cancelled bookings are deleted rather than flagged.
const BookingStatusConfirmed = "confirmed"

// Booking is a guest's claim on one or more tables for the half-open
// window [Start, End).  The window lives here only; the Reservation
// rows that assign tables inherit it.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owner of the booking.
//  RestaurantID – restaurant being booked.
//  Start        – inclusive start (UTC in storage).
//  End          – exclusive end (UTC in storage).
//  Guests       – party size.
//  Status       – booking status, always "confirmed" once stored.
//  CreatedAt    – creation timestamp.
type Booking struct {
    ID           uint64    // bookings.id
    UserID       uint64    // bookings.user_id
    RestaurantID uint64    // bookings.restaurant_id
    Start        time.Time // bookings.start_dt
    End          time.Time // bookings.end_dt
    Guests       int       // bookings.guests
    Status       string    // bookings.status
    CreatedAt    time.Time // bookings.created_at
}

// Overlaps reports whether [start, end) intersects the booking window.
func (b Booking) Overlaps(start, end time.Time) bool {
    return Overlaps(b.Start, b.End, start, end)
}

// Overlaps reports whether [s1, e1) and [s2, e2) intersect, i.e.
// NOT (e1 <= s2 OR s1 >= e2).  Touching windows do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
    return e1.After(s2) && s1.Before(e2)
}

// Reservation assigns a single table to a booking.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – parent booking.
//  TableID   – assigned table.
//  CreatedAt – creation timestamp.
type Reservation struct {
    ID        uint64    // reservations.id
    BookingID uint64    // reservations.booking_id
    TableID   uint64    // reservations.table_id
    CreatedAt time.Time // reservations.created_at
}
