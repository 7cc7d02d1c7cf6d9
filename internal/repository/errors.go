// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// and the ledger service to distinguish between failure kinds without
// inspecting driver errors.
package repository

import "errors"

// ErrBookingNotFound is returned when no booking has the requested id.
// Handlers translate it into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrSlotFull is returned when admitting a party would push the confirmed
// occupancy of a (date, time) slot over capacity.  Handlers translate it
// into an HTTP 409 response; the caller may retry with another slot.
var ErrSlotFull = errors.New("slot over capacity")

// ErrEmailExists is returned when a staff account with the same email
// already exists.
var ErrEmailExists = errors.New("email already exists")

