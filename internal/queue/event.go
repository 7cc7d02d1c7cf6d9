// Package queue defines the booking event payloads exchanged over RabbitMQ and
// the background consumer that records them.
package queue

// Queue names double as event types.
const (
    EventBookingConfirmed = "booking.confirmed"
    EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking is confirmed or cancelled.  It
// carries enough of the booking for consumers to log it and email the guest
// without querying the database.
type BookingEvent struct {
    Type         string `json:"type"`
    BookingID    uint64 `json:"booking_id"`
    CustomerName string `json:"customer_name"`
    Email        string `json:"email"`
    Date         string `json:"date"`
    Time         string `json:"time"`
    PartySize    int    `json:"party_size"`
    OccurredAt   string `json:"occurred_at"` // RFC3339, UTC
}
