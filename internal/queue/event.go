// Package queue defines the domain events exchanged over RabbitMQ together
// with the publisher used by the reservation engine and the background
// consumer that records them.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/table-reservation/internal/utils"
)

// QueueName is the durable queue every booking event is routed to.
const QueueName = "booking.events"

// Event types.
const (
    EventBookingConfirmed  = "booking.confirmed"
    EventBookingCancelled  = "booking.cancelled"
    EventFeedbackSubmitted = "feedback.submitted"
)

// BookingEvent is published after a booking transaction commits.  It
// carries enough for downstream consumers to log, notify or feed
// analytics without querying the primary database.  Fields that do not
// apply to an event type are left empty.
type BookingEvent struct {
    ID             string   `json:"id"`
    Type           string   `json:"type"`
    BookingID      uint64   `json:"booking_id"`
    UserID         uint64   `json:"user_id"`
    RestaurantID   uint64   `json:"restaurant_id"`
    RestaurantName string   `json:"restaurant_name,omitempty"`
    StartsAt       string   `json:"starts_at,omitempty"`
    EndsAt         string   `json:"ends_at,omitempty"`
    Guests         int      `json:"guests,omitempty"`
    TableNos       []int    `json:"tables,omitempty"`
    ReservationIDs []uint64 `json:"reservation_ids,omitempty"`
    Stars          int      `json:"stars,omitempty"`
    OccurredAt     string   `json:"occurred_at"`
}

// NewBookingEvent stamps a fresh event of the given type with a random
// id and the current time.
func NewBookingEvent(typ string) BookingEvent {
    return BookingEvent{
        ID:         uuid.NewString(),
        Type:       typ,
        OccurredAt: utils.FormatISO(time.Now()),
    }
}
