package app

import (
	"context"
	"fmt"
	"time"

	"stayhaven/internal/domain"
)

// SweepService drives the time-based confirmed -> completed transition.
// The sweeper binary lists due reservations and fans CompleteOne out
// over a bounded worker pool.
type SweepService struct {
	store  domain.ReservationStore
	cache  domain.Cache
	events domain.EventPublisher
}

func NewSweepService(store domain.ReservationStore, cache domain.Cache, events domain.EventPublisher) *SweepService {
	return &SweepService{store: store, cache: cache, events: events}
}

// Due lists confirmed reservations whose checkout is on or before asOf.
func (s *SweepService) Due(ctx context.Context, asOf time.Time, limit int) ([]domain.Reservation, error) {
	return s.store.ListDueForCompletion(ctx, asOf, limit)
}

// CompleteOne marks a single reservation completed, drops the owner's
// cached list, and emits the completion event.
func (s *SweepService) CompleteOne(ctx context.Context, r domain.Reservation) error {
	if !domain.CanTransition(r.Status, domain.StatusCompleted) {
		return fmt.Errorf("%w: cannot complete reservation in status %s", domain.ErrInvalidInput, r.Status)
	}
	if err := s.store.MarkCompleted(ctx, r.ID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, userReservationsKey(r.UserID))
	}
	if s.events != nil {
		// best effort; completion already committed
		_ = s.events.Publish(ctx, domain.Event{
			Kind:          EventCompleted,
			ReservationID: r.ID,
			UserID:        r.UserID,
			HotelID:       r.HotelID,
			RoomID:        r.RoomID,
			OccurredAt:    time.Now().UTC(),
		})
	}
	return nil
}
