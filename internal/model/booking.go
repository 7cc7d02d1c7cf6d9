package model

import "time"

// BookingStatus is the lifecycle state of a booking.  The only transition is
// confirmed -> cancelled.
type BookingStatus string

const (
    BookingConfirmed BookingStatus = "confirmed"
    BookingCancelled BookingStatus = "cancelled"
)

// Booking is one table reservation as stored in the `bookings` table.
//
// Fields:
//  ID              – auto-increment identifier, assigned on insert.
//  CustomerName    – name the table is booked under.
//  Email, Phone    – contact details; Email is also the lookup key for guests.
//  Date            – reservation day, YYYY-MM-DD.
//  Time            – one of the configured slots, e.g. "7:00 PM".
//  PartySize       – number of guests.
//  SpecialRequests – optional free text.
//  Status          – confirmed or cancelled.
//  CreatedAt       – server timestamp (UTC).
type Booking struct {
    ID              uint64        `json:"id"`
    CustomerName    string        `json:"customer_name"`
    Email           string        `json:"email"`
    Phone           string        `json:"phone"`
    Date            string        `json:"date"`
    Time            string        `json:"time"`
    PartySize       int           `json:"party_size"`
    SpecialRequests string        `json:"special_requests,omitempty"`
    Status          BookingStatus `json:"status"`
    CreatedAt       time.Time     `json:"created_at"`
}

// SlotAvailability is a derived view of a slot with remaining seats.
type SlotAvailability struct {
    Time           string `json:"time"`
    AvailableSeats int    `json:"available_seats"`
}

// SlotMinutes converts a slot label such as "7:30 PM" into minutes after
// midnight.  It is stored alongside the label so that slots sort
// chronologically instead of lexically.
func SlotMinutes(slot string) (int, error) {
    t, err := time.Parse("3:04 PM", slot)
    if err != nil {
        return 0, err
    }
    return t.Hour()*60 + t.Minute(), nil
}
