package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/example/fleet-availability/internal/models"
	"github.com/example/fleet-availability/internal/observability"
	"github.com/example/fleet-availability/internal/storage"
)

// ErrInvalidQuery marks a request-level error: missing or syntactically
// malformed input, rejected before any store access.
var ErrInvalidQuery = errors.New("eligibility: missing or malformed parameters")

// FaultError marks an infrastructure failure in a mandatory stage. It is
// deliberately distinct from a denial: the caller must be able to tell
// "you can't ride" apart from "we couldn't find out".
type FaultError struct {
	Stage string
	Err   error
}

func (e *FaultError) Error() string { return fmt.Sprintf("eligibility: %s: %v", e.Stage, e.Err) }
func (e *FaultError) Unwrap() error { return e.Err }

// RiderSource, AreaResolver and FleetSource are the narrow views of the
// collaborators the gate needs, so tests can substitute each stage.
type RiderSource interface {
	RiderByEmail(ctx context.Context, email string) (models.Rider, error)
}

type AreaResolver interface {
	Resolve(ctx context.Context, c models.Coord) (models.ServiceArea, bool, error)
}

type FleetSource interface {
	AvailableIn(ctx context.Context, a models.ServiceArea) ([]models.Bike, error)
}

// Auditor records a completed decision. Implementations are best-effort;
// Record must not block or fail the caller.
type Auditor interface {
	Record(riderID string, loc models.Coord, payload []byte)
}

// Outcome pairs the terminal reason with the uniform decision shape every
// branch returns.
type Outcome struct {
	Reason   Reason
	Decision models.EligibilityDecision
}

// Pipeline is the ordered eligibility gate. Checks run cheapest and most
// authoritative first (local rider state) before the geospatial joins, so
// invalid or abusive requests never touch the spatial store.
type Pipeline struct {
	Riders RiderSource
	Areas  AreaResolver
	Fleet  FleetSource
	Audit  Auditor
	Logger *slog.Logger

	// MinBalance is the inclusive ride threshold: a balance exactly at
	// the threshold passes.
	MinBalance float64
}

// Evaluate runs the gate for one query. It returns a non-nil error only
// for request errors (ErrInvalidQuery) and mandatory-stage faults
// (*FaultError); every business denial is a normal Outcome.
func (p *Pipeline) Evaluate(ctx context.Context, q models.EligibilityQuery) (Outcome, error) {
	if err := validate(q); err != nil {
		return Outcome{}, err
	}

	rider, err := p.Riders.RiderByEmail(ctx, q.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return p.deny(ReasonRiderNotFound, 0), nil
		}
		observability.StoreFaultsTotal.WithLabelValues("rider_lookup").Inc()
		return Outcome{}, &FaultError{Stage: "rider lookup", Err: err}
	}

	if rider.Blocked {
		return p.deny(ReasonBlocked, rider.Balance), nil
	}
	if rider.Balance < p.MinBalance {
		return p.deny(ReasonLowBalance, rider.Balance), nil
	}

	serviceArea, ok, err := p.Areas.Resolve(ctx, q.Location)
	if err != nil {
		observability.StoreFaultsTotal.WithLabelValues("service_area").Inc()
		// A resolution timeout degrades to the stage's own deny path:
		// the rider is told the area is not serviceable, while the fault
		// is still logged and counted above. Any other store failure is
		// a real fault.
		if errors.Is(err, context.DeadlineExceeded) {
			if p.Logger != nil {
				p.Logger.Error("service area resolution timed out", "error", err)
			}
			return p.deny(ReasonOutOfServiceArea, rider.Balance), nil
		}
		return Outcome{}, &FaultError{Stage: "service area resolution", Err: err}
	}
	if !ok {
		return p.deny(ReasonOutOfServiceArea, rider.Balance), nil
	}

	bikes, err := p.Fleet.AvailableIn(ctx, serviceArea)
	if err != nil {
		observability.StoreFaultsTotal.WithLabelValues("fleet_lookup").Inc()
		// Never map a fleet fault to "no bikes": absence of inventory is
		// an answer, a failed query is not.
		return Outcome{}, &FaultError{Stage: "fleet lookup", Err: err}
	}

	reason := ReasonAllowed
	if len(bikes) == 0 {
		reason = ReasonNoBikes
		bikes = []models.Bike{}
	}
	out := Outcome{
		Reason: reason,
		Decision: models.EligibilityDecision{
			AllowRide: reason == ReasonAllowed,
			Balance:   rider.Balance,
			Bikes:     bikes,
		},
	}
	observability.DecisionsTotal.WithLabelValues(reason.Label()).Inc()

	// One history entry per request that completed the fleet lookup,
	// bikes or not. Its fate cannot change the decision already made.
	if p.Audit != nil {
		p.Audit.Record(rider.ID, q.Location, decisionPayload(out))
	}
	return out, nil
}

func (p *Pipeline) deny(r Reason, balance float64) Outcome {
	observability.DecisionsTotal.WithLabelValues(r.Label()).Inc()
	return Outcome{
		Reason: r,
		Decision: models.EligibilityDecision{
			AllowRide: false,
			Balance:   balance,
			Bikes:     []models.Bike{},
		},
	}
}

func validate(q models.EligibilityQuery) error {
	if strings.TrimSpace(q.Email) == "" {
		return ErrInvalidQuery
	}
	if !validLat(q.Location.Lat) || !validLon(q.Location.Lon) {
		return ErrInvalidQuery
	}
	return nil
}

func validLat(v float64) bool { return !math.IsNaN(v) && v >= -90 && v <= 90 }
func validLon(v float64) bool { return !math.IsNaN(v) && v >= -180 && v <= 180 }

// decisionPayload is the JSON projection of the decision exactly as it is
// returned to the caller; the same bytes land in the history ledger.
func decisionPayload(o Outcome) []byte {
	b, err := json.Marshal(struct {
		Message string                     `json:"message"`
		Data    models.EligibilityDecision `json:"data"`
	}{o.Reason.Message(), o.Decision})
	if err != nil {
		return []byte("{}")
	}
	return b
}
