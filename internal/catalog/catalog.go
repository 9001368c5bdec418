// Package catalog holds the static hotel/room reference data. The set is
// loaded once at startup and never mutated; callers get their own copies
// of the hotel slice so nothing downstream can alias the snapshot.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"stayhaven/internal/domain"
)

//go:embed hotels.json
var hotelsJSON []byte

type Catalog struct {
	hotels []domain.Hotel
	byID   map[string]int
}

// New builds the catalog from the embedded snapshot.
func New() (*Catalog, error) {
	return FromJSON(hotelsJSON)
}

func FromJSON(b []byte) (*Catalog, error) {
	var hotels []domain.Hotel
	if err := json.Unmarshal(b, &hotels); err != nil {
		return nil, fmt.Errorf("catalog: decode snapshot: %w", err)
	}
	byID := make(map[string]int, len(hotels))
	for i, h := range hotels {
		if h.ID == "" {
			return nil, fmt.Errorf("catalog: hotel at index %d has no id", i)
		}
		if _, dup := byID[h.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate hotel id %q", h.ID)
		}
		byID[h.ID] = i
	}
	return &Catalog{hotels: hotels, byID: byID}, nil
}

// Hotel looks up a hotel by id. Unknown ids are domain.ErrNotFound,
// never a panic.
func (c *Catalog) Hotel(id string) (domain.Hotel, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Hotel{}, fmt.Errorf("hotel %q: %w", id, domain.ErrNotFound)
	}
	return c.hotels[i], nil
}

// Room resolves a room within a hotel. Room ids are only unique per
// hotel, so the pair is the lookup key.
func (c *Catalog) Room(hotelID, roomID string) (domain.Room, error) {
	h, err := c.Hotel(hotelID)
	if err != nil {
		return domain.Room{}, err
	}
	for _, r := range h.Rooms {
		if r.ID == roomID {
			return r, nil
		}
	}
	return domain.Room{}, fmt.Errorf("room %q in hotel %q: %w", roomID, hotelID, domain.ErrNotFound)
}

// List returns all hotels in snapshot order.
func (c *Catalog) List() []domain.Hotel {
	out := make([]domain.Hotel, len(c.hotels))
	copy(out, c.hotels)
	return out
}

// Quote prices a stay: nights in [checkIn, checkOut) times the room's
// nightly rate. The create path validates caller-supplied totals against
// this instead of trusting them.
func Quote(room domain.Room, checkIn, checkOut time.Time) float64 {
	nights := checkOut.Sub(checkIn).Hours() / 24
	if nights <= 0 {
		return 0
	}
	return math.Round(nights) * room.PricePerNight
}
