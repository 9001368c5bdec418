package domain

import (
	"fmt"
	"time"
)

// Status is the closed reservation lifecycle. Anything else coming off
// the wire or out of the store is rejected by ParseStatus.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown reservation status %q", ErrInvalidInput, s)
}

// CanTransition encodes the one-directional lifecycle: confirmed may
// become cancelled or completed; both of those are terminal.
func CanTransition(from, to Status) bool {
	return from == StatusConfirmed && (to == StatusCancelled || to == StatusCompleted)
}

type Reservation struct {
	ID         string
	UserID     string
	HotelID    string
	RoomID     string
	CheckIn    time.Time // calendar date, UTC midnight
	CheckOut   time.Time
	Guests     int
	TotalPrice float64
	CreatedAt  time.Time
	Status     Status
}

// NewReservation is the caller-supplied part of a booking request.
// ID, CreatedAt and Status are assigned by the store on insert.
type NewReservation struct {
	UserID     string
	HotelID    string
	RoomID     string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	TotalPrice float64
}

// Nights is the length of the half-open stay [CheckIn, CheckOut).
func (n NewReservation) Nights() int {
	return int(n.CheckOut.Sub(n.CheckIn).Hours() / 24)
}

// Overlaps reports whether the half-open intervals [a1,b1) and [a2,b2)
// intersect: a1 < b2 && a2 < b1. Back-to-back stays (checkout day equals
// the next checkin day) do not overlap.
func Overlaps(a1, b1, a2, b2 time.Time) bool {
	return a1.Before(b2) && a2.Before(b1)
}

// OverlapsInterval applies Overlaps against the reservation's own stay.
func (r Reservation) OverlapsInterval(checkIn, checkOut time.Time) bool {
	return Overlaps(r.CheckIn, r.CheckOut, checkIn, checkOut)
}

// Date builds the UTC-midnight time all check-in/out values use.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
