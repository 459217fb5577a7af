package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/fleet-availability/internal/eligibility"
	"github.com/example/fleet-availability/internal/models"
	"github.com/example/fleet-availability/internal/storage"
)

type Server struct {
	pipeline *eligibility.Pipeline
	store    storage.Store
	logger   *slog.Logger
	mux      *mux.Router
}

func NewServer(p *eligibility.Pipeline, store storage.Store, logger *slog.Logger) *Server {
	s := &Server{pipeline: p, store: store, logger: logger, mux: mux.NewRouter()}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/bikes/availability", s.handleAvailability).Methods("POST")
	s.mux.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// availabilityRequest uses pointer fields so "latitude": 0 is distinguishable
// from a missing key.
type availabilityRequest struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	RiderEmail *string  `json:"riderEmail"`
}

// envelope is the uniform decision response: every terminal branch of the
// gate produces the same shape, so callers only ever branch on the data,
// never on which stage denied them.
type envelope struct {
	Message string                     `json:"message"`
	Data    models.EligibilityDecision `json:"data"`
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w)
		return
	}
	if req.Latitude == nil || req.Longitude == nil || req.RiderEmail == nil {
		writeRequestError(w)
		return
	}

	q := models.EligibilityQuery{
		Email:     *req.RiderEmail,
		Location:  models.Coord{Lat: *req.Latitude, Lon: *req.Longitude},
		Requested: time.Now().UTC(),
	}
	out, err := s.pipeline.Evaluate(r.Context(), q)
	if err != nil {
		if errors.Is(err, eligibility.ErrInvalidQuery) {
			writeRequestError(w)
			return
		}
		s.logger.Error("eligibility fault",
			"error", err, "request_id", requestIDFromContext(r.Context()))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "availability check failed"})
		return
	}

	// "rider not found" is auth-adjacent, not a server failure; all the
	// other denials are ordinary 200 decisions.
	status := http.StatusOK
	if out.Reason == eligibility.ReasonRiderNotFound {
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, envelope{Message: out.Reason.Message(), Data: out.Decision})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "store unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Success"})
}

func writeRequestError(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required parameters"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
