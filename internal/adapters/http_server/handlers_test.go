package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	httpserver "stayhaven/internal/adapters/http_server"
	"stayhaven/internal/app"
	"stayhaven/internal/catalog"
	"stayhaven/internal/domain"
)

var testSecret = []byte("test-secret")

// memStore implements the store contract in memory, including the
// atomic overlap check in CreateConfirmed.
type memStore struct {
	rows   []domain.Reservation
	nextID int
}

func (m *memStore) CreateConfirmed(ctx context.Context, n domain.NewReservation) (domain.Reservation, error) {
	for _, r := range m.rows {
		if r.HotelID == n.HotelID && r.RoomID == n.RoomID &&
			r.Status == domain.StatusConfirmed && r.OverlapsInterval(n.CheckIn, n.CheckOut) {
			return domain.Reservation{}, domain.ErrUnavailable
		}
	}
	m.nextID++
	res := domain.Reservation{
		ID: fmt.Sprintf("res-%d", m.nextID), UserID: n.UserID,
		HotelID: n.HotelID, RoomID: n.RoomID,
		CheckIn: n.CheckIn, CheckOut: n.CheckOut,
		Guests: n.Guests, TotalPrice: n.TotalPrice,
		CreatedAt: time.Now().UTC(), Status: domain.StatusConfirmed,
	}
	m.rows = append(m.rows, res)
	return res, nil
}

func (m *memStore) ListForRoom(ctx context.Context, hotelID, roomID string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range m.rows {
		if r.HotelID == hotelID && r.RoomID == roomID && r.Status != domain.StatusCancelled {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListForUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) CancelOwned(ctx context.Context, id, userID string) error {
	for i, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			m.rows[i].Status = domain.StatusCancelled
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) ListDueForCompletion(ctx context.Context, asOf time.Time, limit int) ([]domain.Reservation, error) {
	return nil, nil
}

func (m *memStore) MarkCompleted(ctx context.Context, id string) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	cat, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	store := &memStore{}
	svc := app.NewBookingService(store, cat, nil, nil, time.Minute)

	srv := httpserver.New(rate.Limit(1000), 1000)
	srv.MountHandlers(&httpserver.Handlers{Bookings: svc, Catalog: cat, JWTSecret: testSecret})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, store
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	s, err := tok.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func doJSON(t *testing.T, method, url, bearer string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func createBody() map[string]any {
	return map[string]any{
		"hotel_id":    "1",
		"room_id":     "101",
		"check_in":    "2025-06-01",
		"check_out":   "2025-06-05",
		"guests":      2,
		"total_price": 1000,
	}
}

func TestHotelsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/hotels?location=miami")
	if err != nil {
		t.Fatalf("GET hotels: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var hotels []domain.Hotel
	if err := json.NewDecoder(resp.Body).Decode(&hotels); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hotels) != 1 || hotels[0].ID != "2" {
		t.Fatalf("filtered hotels: %+v", hotels)
	}

	resp404, err := http.Get(ts.URL + "/v1/hotels/999")
	if err != nil {
		t.Fatalf("GET unknown hotel: %v", err)
	}
	defer resp404.Body.Close()
	if resp404.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown hotel status %d", resp404.StatusCode)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	get := func(path string) (int, map[string]bool) {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		var out map[string]bool
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	code, out := get("/v1/hotels/1/rooms/101/availability?check_in=2025-06-01&check_out=2025-06-05")
	if code != http.StatusOK || !out["available"] {
		t.Fatalf("fresh room: code=%d out=%v", code, out)
	}

	// booked via API, overlapping recheck flips to false
	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/reservations", token(t, "u1"), createBody())
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	code, out = get("/v1/hotels/1/rooms/101/availability?check_in=2025-06-03&check_out=2025-06-07")
	if code != http.StatusOK || out["available"] {
		t.Fatalf("booked room: code=%d out=%v", code, out)
	}

	if code, _ := get("/v1/hotels/1/rooms/101/availability?check_in=bogus&check_out=2025-06-05"); code != http.StatusBadRequest {
		t.Fatalf("bad date code %d", code)
	}
	if code, _ := get("/v1/hotels/1/rooms/999/availability?check_in=2025-06-01&check_out=2025-06-05"); code != http.StatusNotFound {
		t.Fatalf("unknown room code %d", code)
	}
}

func TestReservations_RequireAuth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/reservations", "", createBody())
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/reservations", "garbage.token.here", createBody())
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status %d", resp.StatusCode)
	}
}

func TestReservations_CreateConflictAndCancel(t *testing.T) {
	ts, store := newTestServer(t)
	bearer := token(t, "u1")

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/reservations", bearer, createBody())
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || created.Status != "confirmed" {
		t.Fatalf("create: status=%d body=%+v", resp.StatusCode, created)
	}

	// overlapping request by another user is a conflict
	clash := createBody()
	clash["check_in"], clash["check_out"] = "2025-06-02", "2025-06-04"
	clash["total_price"] = 500
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/reservations", token(t, "u2"), clash)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflict status %d", resp.StatusCode)
	}

	// foreign cancel is a 404, owner cancel succeeds
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/reservations/"+created.ID+"/cancel", token(t, "u2"), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign cancel status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/reservations/"+created.ID+"/cancel", bearer, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("owner cancel status %d", resp.StatusCode)
	}
	if store.rows[0].Status != domain.StatusCancelled {
		t.Fatalf("row status %s", store.rows[0].Status)
	}
}

func TestReservations_ValidationMapsTo400(t *testing.T) {
	ts, _ := newTestServer(t)
	bad := createBody()
	bad["guests"] = 9 // room 101 sleeps 2
	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/reservations", token(t, "u1"), bad)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestReservations_ListForCaller(t *testing.T) {
	ts, _ := newTestServer(t)
	bearer := token(t, "u1")

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/reservations", bearer, createBody())
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/reservations", bearer, nil)
	defer resp.Body.Close()
	var list []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0]["user_id"] != "u1" || list[0]["check_in"] != "2025-06-01" {
		t.Fatalf("list: %+v", list)
	}

	// another user sees nothing
	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/reservations", token(t, "u2"), nil)
	defer resp.Body.Close()
	var other []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&other)
	if len(other) != 0 {
		t.Fatalf("other user's list: %+v", other)
	}
}
