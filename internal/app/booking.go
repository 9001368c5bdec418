package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"stayhaven/internal/catalog"
	"stayhaven/internal/domain"
)

const (
	EventCreated   = "reservation.created"
	EventCancelled = "reservation.cancelled"
	EventCompleted = "reservation.completed"
)

// BookingService is the reservation lifecycle manager plus the
// availability checker. The store performs the overlap check and the
// insert in one transaction, so two callers racing on the same room
// cannot both end up confirmed.
type BookingService struct {
	store    domain.ReservationStore
	catalog  *catalog.Catalog
	cache    domain.Cache
	events   domain.EventPublisher
	cacheTTL time.Duration
}

func NewBookingService(store domain.ReservationStore, cat *catalog.Catalog, cache domain.Cache, events domain.EventPublisher, ttl time.Duration) *BookingService {
	return &BookingService{store: store, catalog: cat, cache: cache, events: events, cacheTTL: ttl}
}

// IsAvailable reports whether the room is free for the half-open stay
// [checkIn, checkOut). Cancelled reservations never block. A store
// failure comes back as an error, never as false: "couldn't check" and
// "booked" are different answers.
func (s *BookingService) IsAvailable(ctx context.Context, hotelID, roomID string, checkIn, checkOut time.Time) (bool, error) {
	if !checkOut.After(checkIn) {
		return false, fmt.Errorf("%w: check_out must be after check_in", domain.ErrInvalidInput)
	}
	existing, err := s.store.ListForRoom(ctx, hotelID, roomID)
	if err != nil {
		return false, fmt.Errorf("list reservations for %s/%s: %w", hotelID, roomID, err)
	}
	for _, r := range existing {
		if r.OverlapsInterval(checkIn, checkOut) {
			return false, nil
		}
	}
	return true, nil
}

// Create validates the request synchronously and inserts a confirmed
// reservation. Validation failures never reach the store.
func (s *BookingService) Create(ctx context.Context, n domain.NewReservation) (domain.Reservation, error) {
	if n.UserID == "" {
		return domain.Reservation{}, domain.ErrUnauthenticated
	}
	room, err := s.catalog.Room(n.HotelID, n.RoomID)
	if err != nil {
		return domain.Reservation{}, err
	}
	if !n.CheckOut.After(n.CheckIn) {
		return domain.Reservation{}, fmt.Errorf("%w: check_out must be after check_in", domain.ErrInvalidInput)
	}
	if n.Guests < 1 {
		return domain.Reservation{}, fmt.Errorf("%w: guests must be positive", domain.ErrInvalidInput)
	}
	if n.Guests > room.Capacity {
		return domain.Reservation{}, fmt.Errorf("%w: room %s sleeps at most %d guests", domain.ErrInvalidInput, room.ID, room.Capacity)
	}
	if want := catalog.Quote(room, n.CheckIn, n.CheckOut); math.Abs(n.TotalPrice-want) > 1e-6 {
		return domain.Reservation{}, fmt.Errorf("%w: total_price %.2f does not match %d night(s) at %.2f", domain.ErrInvalidInput, n.TotalPrice, n.Nights(), room.PricePerNight)
	}

	res, err := s.store.CreateConfirmed(ctx, n)
	if err != nil {
		return domain.Reservation{}, err
	}

	s.invalidateUser(ctx, res.UserID)
	s.publish(ctx, EventCreated, res)
	return res, nil
}

// Cancel flips the reservation to cancelled, scoped to the owner. A
// miss — no such reservation, or someone else's — is ErrNotFound either
// way, so callers can't probe for other users' bookings.
func (s *BookingService) Cancel(ctx context.Context, reservationID, callerID string) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.store.CancelOwned(ctx, reservationID, callerID); err != nil {
		return err
	}
	s.invalidateUser(ctx, callerID)
	s.publish(ctx, EventCancelled, domain.Reservation{ID: reservationID, UserID: callerID})
	return nil
}

// ListForUser returns the caller's reservations, cached per user.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	key := userReservationsKey(userID)
	var cached []domain.Reservation
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}
	rs, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations for user: %w", err)
	}
	// copy before caching so callers can't mutate the cached value
	out := make([]domain.Reservation, len(rs))
	copy(out, rs)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *BookingService) invalidateUser(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, userReservationsKey(userID))
}

func (s *BookingService) publish(ctx context.Context, kind string, r domain.Reservation) {
	if s.events == nil {
		return
	}
	e := domain.Event{
		Kind:          kind,
		ReservationID: r.ID,
		UserID:        r.UserID,
		HotelID:       r.HotelID,
		RoomID:        r.RoomID,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("reservation", r.ID).Msg("event publish failed")
	}
}

func userReservationsKey(userID string) string {
	return "reservations:" + userID
}
