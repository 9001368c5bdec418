package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stayhaven/internal/adapters/observability"
	"stayhaven/internal/app"
	"stayhaven/internal/catalog"
	"stayhaven/internal/domain"
)

const dateLayout = "2006-01-02"

type Handlers struct {
	Bookings  *app.BookingService
	Catalog   *catalog.Catalog
	JWTSecret []byte
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels", h.listHotels)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Get("/v1/hotels/{id}/rooms/{roomID}/availability", h.checkAvailability)

	s.mux.Group(func(gr chi.Router) {
		gr.Use(Auth(h.JWTSecret))
		gr.Post("/v1/reservations", h.createReservation)
		gr.Get("/v1/reservations", h.listReservations)
		gr.Post("/v1/reservations/{id}/cancel", h.cancelReservation)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeDomainErr maps core errors onto HTTP statuses. Anything not a
// domain sentinel is a store/backend failure: 502, never a silent
// downgrade into "not available" or an empty result.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeProblem(w, http.StatusConflict, "Room Unavailable", "the room is already booked for the requested dates")
	default:
		log.Error().Err(err).Msg("store failure")
		writeProblem(w, http.StatusBadGateway, "Store Unavailable", "the reservation store could not be reached")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- catalog ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	cr, err := criteriaFromQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	hotels := catalog.Filter(h.Catalog.List(), cr)
	writeCachedJSON(w, r, hotels)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Catalog.Hotel(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeCachedJSON(w, r, hotel)
}

func criteriaFromQuery(r *http.Request) (catalog.Criteria, error) {
	q := r.URL.Query()
	cr := catalog.Criteria{Location: q.Get("location")}
	if v := q.Get("min_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return catalog.Criteria{}, fmt.Errorf("min_price must be a non-negative number")
		}
		cr.MinPrice = f
	}
	if v := q.Get("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return catalog.Criteria{}, fmt.Errorf("max_price must be a non-negative number")
		}
		cr.MaxPrice = f
	}
	if v := q.Get("amenities"); v != "" {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cr.Amenities = append(cr.Amenities, a)
			}
		}
	}
	return cr, nil
}

// ---- availability ----

func (h *Handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	hotelID := chi.URLParam(r, "id")
	roomID := chi.URLParam(r, "roomID")

	checkIn, err := parseDate(r.URL.Query().Get("check_in"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_in: "+err.Error())
		return
	}
	checkOut, err := parseDate(r.URL.Query().Get("check_out"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_out: "+err.Error())
		return
	}
	// room must exist before we ask the store about it
	if _, err := h.Catalog.Room(hotelID, roomID); err != nil {
		writeDomainErr(w, err)
		return
	}

	ok, err := h.Bookings.IsAvailable(r.Context(), hotelID, roomID, checkIn, checkOut)
	if err != nil {
		observability.ObserveBooking("availability", "error")
		writeDomainErr(w, err)
		return
	}
	observability.ObserveBooking("availability", "ok")
	writeJSON(w, http.StatusOK, map[string]bool{"available": ok})
}

// ---- reservations ----

type reservationRequest struct {
	HotelID    string  `json:"hotel_id"`
	RoomID     string  `json:"room_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Guests     int     `json:"guests"`
	TotalPrice float64 `json:"total_price"`
}

type reservationResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	HotelID    string  `json:"hotel_id"`
	RoomID     string  `json:"room_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Guests     int     `json:"guests"`
	TotalPrice float64 `json:"total_price"`
	CreatedAt  string  `json:"created_at"`
	Status     string  `json:"status"`
}

func toResponse(r domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		HotelID:    r.HotelID,
		RoomID:     r.RoomID,
		CheckIn:    r.CheckIn.Format(dateLayout),
		CheckOut:   r.CheckOut.Format(dateLayout),
		Guests:     r.Guests,
		TotalPrice: r.TotalPrice,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		Status:     string(r.Status),
	}
}

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_in: "+err.Error())
		return
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_out: "+err.Error())
		return
	}

	res, err := h.Bookings.Create(r.Context(), domain.NewReservation{
		UserID:     UserID(r.Context()),
		HotelID:    req.HotelID,
		RoomID:     req.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
		TotalPrice: req.TotalPrice,
	})
	if err != nil {
		observability.ObserveBooking("create", "error")
		writeDomainErr(w, err)
		return
	}
	observability.ObserveBooking("create", "ok")
	writeJSON(w, http.StatusCreated, toResponse(res))
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Bookings.ListForUser(r.Context(), UserID(r.Context()))
	if err != nil {
		observability.ObserveBooking("list", "error")
		writeDomainErr(w, err)
		return
	}
	observability.ObserveBooking("list", "ok")
	out := make([]reservationResponse, 0, len(rs))
	for _, rv := range rs {
		out = append(out, toResponse(rv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) cancelReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Bookings.Cancel(r.Context(), id, UserID(r.Context())); err != nil {
		observability.ObserveBooking("cancel", "error")
		writeDomainErr(w, err)
		return
	}
	observability.ObserveBooking("cancel", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date (want %s)", dateLayout)
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (want %s)", s, dateLayout)
	}
	return t, nil
}
