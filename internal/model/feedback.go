package model

import "time"

// Feedback is the single review attached to a booking.  UserID and
// RestaurantID are copied from the booking so that listings do not
// need a join.
//
// Fields:
//  ID           – primary key identifier.
//  BookingID    – reviewed booking (unique).
//  UserID       – author, copied from the booking.
//  RestaurantID – reviewed restaurant, copied from the booking.
//  Stars        – rating from 1 to 5.
//  Text         – free text, may be empty.
//  CreatedAt    – creation or last update timestamp.
type Feedback struct {
    ID           uint64    // feedbacks.id
    BookingID    uint64    // feedbacks.booking_id
    UserID       uint64    // feedbacks.user_id
    RestaurantID uint64    // feedbacks.restaurant_id
    Stars        int       // feedbacks.stars
    Text         string    // feedbacks.text
    CreatedAt    time.Time // feedbacks.created_at
}
