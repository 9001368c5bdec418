package catalog

import (
	"strings"

	"stayhaven/internal/domain"
)

// Criteria is the hotel search filter. All clauses are AND-combined;
// zero values match everything (empty location, no amenities, and a
// [0, +Inf) price range via MaxPrice <= 0).
type Criteria struct {
	Location  string
	MinPrice  float64
	MaxPrice  float64 // <= 0 means unbounded
	Amenities []string
}

// Filter evaluates the criteria over a hotel list. Pure: no side
// effects, deterministic, input slice untouched.
func Filter(hotels []domain.Hotel, cr Criteria) []domain.Hotel {
	out := make([]domain.Hotel, 0, len(hotels))
	for _, h := range hotels {
		if matches(h, cr) {
			out = append(out, h)
		}
	}
	return out
}

func matches(h domain.Hotel, cr Criteria) bool {
	if loc := strings.TrimSpace(cr.Location); loc != "" {
		needle := strings.ToLower(loc)
		city := strings.ToLower(h.Location.City)
		country := strings.ToLower(h.Location.Country)
		if !strings.Contains(city, needle) && !strings.Contains(country, needle) {
			return false
		}
	}

	// Price range applies to the hotel's cheapest room, bounds inclusive.
	min := h.MinRoomPrice()
	if min < cr.MinPrice {
		return false
	}
	if cr.MaxPrice > 0 && min > cr.MaxPrice {
		return false
	}

	// Every requested amenity must be present, exact string match.
	for _, want := range cr.Amenities {
		found := false
		for _, have := range h.Amenities {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
