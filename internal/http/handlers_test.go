package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/fleet-availability/internal/area"
	"github.com/example/fleet-availability/internal/audit"
	"github.com/example/fleet-availability/internal/eligibility"
	"github.com/example/fleet-availability/internal/fleet"
	"github.com/example/fleet-availability/internal/models"
	"github.com/example/fleet-availability/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	store.AddRider(models.Rider{ID: "r1", Email: "rider@example.com", Balance: 100})
	if err := store.AddServiceArea(models.ServiceArea{
		ID: 1, Name: "bengaluru-central", CityID: 1,
		Polygon: models.Polygon{
			{Lat: 12.9, Lon: 77.5},
			{Lat: 12.9, Lon: 77.6},
			{Lat: 13.0, Lon: 77.6},
			{Lat: 13.0, Lon: 77.5},
		},
	}); err != nil {
		t.Fatal(err)
	}
	store.AddBike(models.Bike{ID: "b1", Designation: 101, Lat: 12.95, Lon: 77.55, Status: models.BikeAvailable, Category: "standard"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := &eligibility.Pipeline{
		Riders:     store,
		Areas:      &area.Resolver{Source: store, Logger: logger},
		Fleet:      &fleet.Repository{Source: store},
		Audit:      &audit.Logger{Sink: store, Logger: logger},
		Logger:     logger,
		MinBalance: 50,
	}
	return NewServer(p, store, logger), store
}

func postAvailability(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/bikes/availability", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("bad envelope: %v (%s)", err, w.Body.String())
	}
	return e
}

func TestAvailabilitySuccess(t *testing.T) {
	s, _ := newTestServer(t)
	w := postAvailability(t, s, `{"latitude":12.95,"longitude":77.55,"riderEmail":"rider@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	e := decodeEnvelope(t, w)
	if e.Message != "Success" || !e.Data.AllowRide || e.Data.Balance != 100 || len(e.Data.Bikes) != 1 {
		t.Fatalf("unexpected envelope: %+v", e)
	}
	if e.Data.Bikes[0].ID != "b1" || e.Data.Bikes[0].Designation != 101 {
		t.Fatalf("unexpected bike: %+v", e.Data.Bikes[0])
	}
}

func TestAvailabilityMissingParameters(t *testing.T) {
	s, _ := newTestServer(t)
	for _, body := range []string{
		`{}`,
		`{"latitude":12.95,"longitude":77.55}`,
		`{"latitude":12.95,"riderEmail":"rider@example.com"}`,
		`not json`,
	} {
		w := postAvailability(t, s, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp["error"] != "missing required parameters" {
			t.Fatalf("unexpected error shape: %v", resp)
		}
	}
}

func TestAvailabilityRiderNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	w := postAvailability(t, s, `{"latitude":12.95,"longitude":77.55,"riderEmail":"ghost@example.com"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	e := decodeEnvelope(t, w)
	if e.Message != "rider not found" || e.Data.AllowRide || e.Data.Balance != 0 || len(e.Data.Bikes) != 0 {
		t.Fatalf("unexpected envelope: %+v", e)
	}
}

func TestAvailabilityDenialsShareShape(t *testing.T) {
	s, store := newTestServer(t)
	store.AddRider(models.Rider{ID: "r2", Email: "blocked@example.com", Balance: 80, Blocked: true})
	store.AddRider(models.Rider{ID: "r3", Email: "broke@example.com", Balance: 49})

	cases := []struct {
		body    string
		message string
	}{
		{`{"latitude":12.95,"longitude":77.55,"riderEmail":"blocked@example.com"}`, "account blocked"},
		{`{"latitude":12.95,"longitude":77.55,"riderEmail":"broke@example.com"}`, "balance too low"},
		{`{"latitude":40.0,"longitude":70.0,"riderEmail":"rider@example.com"}`, "not serviceable in this area"},
	}
	for _, tc := range cases {
		w := postAvailability(t, s, tc.body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.message, w.Code)
		}
		e := decodeEnvelope(t, w)
		if e.Message != tc.message || e.Data.AllowRide || e.Data.Bikes == nil || len(e.Data.Bikes) != 0 {
			t.Fatalf("unexpected envelope for %q: %+v", tc.message, e)
		}
	}
}

func TestAvailabilityNoBikes(t *testing.T) {
	s, store := newTestServer(t)
	store.AddRider(models.Rider{ID: "r4", Email: "far@example.com", Balance: 90})
	// second area with no bikes in it
	if err := store.AddServiceArea(models.ServiceArea{
		ID: 2, Name: "empty-zone", CityID: 1,
		Polygon: models.Polygon{
			{Lat: 20.0, Lon: 70.0},
			{Lat: 20.0, Lon: 70.1},
			{Lat: 20.1, Lon: 70.1},
			{Lat: 20.1, Lon: 70.0},
		},
	}); err != nil {
		t.Fatal(err)
	}
	w := postAvailability(t, s, `{"latitude":20.05,"longitude":70.05,"riderEmail":"far@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	e := decodeEnvelope(t, w)
	if e.Message != "no bikes available" || e.Data.AllowRide || len(e.Data.Bikes) != 0 {
		t.Fatalf("unexpected envelope: %+v", e)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["message"] != "Success" {
		t.Fatalf("unexpected health payload: %v", resp)
	}
}
