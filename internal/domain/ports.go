package domain

import (
	"context"
	"time"
)

type ReservationStore interface {
	// CreateConfirmed inserts a confirmed reservation with a
	// store-assigned id and creation time. The non-overlap check against
	// existing confirmed rows for (hotelID, roomID) runs inside the same
	// transaction as the insert; an overlapping interval yields
	// ErrUnavailable and no row.
	CreateConfirmed(ctx context.Context, n NewReservation) (Reservation, error)

	// ListForRoom returns reservations for (hotelID, roomID) whose status
	// is not cancelled. Cancelled rows free the interval permanently.
	ListForRoom(ctx context.Context, hotelID, roomID string) ([]Reservation, error)

	ListForUser(ctx context.Context, userID string) ([]Reservation, error)

	// CancelOwned sets status=cancelled scoped by (id, userID). Zero
	// matching rows — missing or owned by someone else — is ErrNotFound.
	CancelOwned(ctx context.Context, id, userID string) error

	// Sweeper paths.
	ListDueForCompletion(ctx context.Context, asOf time.Time, limit int) ([]Reservation, error)
	MarkCompleted(ctx context.Context, id string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Event is what gets published to the broker when a reservation changes
// state. Publishing is best effort; booking outcomes never depend on it.
type Event struct {
	Kind          string    `json:"kind"` // reservation.created|cancelled|completed
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	HotelID       string    `json:"hotel_id"`
	RoomID        string    `json:"room_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}
