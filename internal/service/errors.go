// Package service holds the reservation ledger and the booking event
// publisher.  Handlers call into it; it calls into the repository layer.
package service

import "errors"

// ErrInvalidBooking marks a request rejected by validation.  It is always
// wrapped with a guest-facing message, e.g.
//
//	fmt.Errorf("%w: Party size must be between 1 and 12 guests.", ErrInvalidBooking)
//
// Use Message to recover the text without the prefix.
var ErrInvalidBooking = errors.New("invalid booking")

// Guest-facing texts for the other outcomes.
const (
    MsgSlotFull        = "Sorry, this time slot is not available. Please choose another time."
    MsgBookingNotFound = "Booking not found."
)

// Message strips the "invalid booking: " prefix from a validation error and
// returns err.Error() for anything else.
func Message(err error) string {
    if err == nil {
        return ""
    }
    s := err.Error()
    prefix := ErrInvalidBooking.Error() + ": "
    if errors.Is(err, ErrInvalidBooking) && len(s) > len(prefix) && s[:len(prefix)] == prefix {
        return s[len(prefix):]
    }
    return s
}
