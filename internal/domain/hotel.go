package domain

// Catalog reference data. Loaded once at startup and never mutated;
// JSON tags match the embedded snapshot.

type Location struct {
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	PostalCode string  `json:"postalCode"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type Room struct {
	ID            string   `json:"id"` // unique within its hotel only
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Capacity      int      `json:"capacity"`
	BedType       string   `json:"bedType"`
	PricePerNight float64  `json:"pricePerNight"`
	Images        []string `json:"images"`
	Amenities     []string `json:"amenities"`
}

type Hotel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    Location `json:"location"`
	Rating      float64  `json:"rating"`
	Images      []string `json:"images"`
	Amenities   []string `json:"amenities"`
	Rooms       []Room   `json:"rooms"`
}

// MinRoomPrice is the cheapest nightly rate across the hotel's rooms.
// Filtering compares this against the requested price range.
func (h Hotel) MinRoomPrice() float64 {
	if len(h.Rooms) == 0 {
		return 0
	}
	min := h.Rooms[0].PricePerNight
	for _, r := range h.Rooms[1:] {
		if r.PricePerNight < min {
			min = r.PricePerNight
		}
	}
	return min
}
