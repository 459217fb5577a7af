package storage

import (
	"context"
	"errors"

	"github.com/example/fleet-availability/internal/models"
)

// ErrNotFound is returned by lookups whose subject does not exist. It is
// the only store error callers are expected to branch on; everything else
// is an infrastructure fault.
var ErrNotFound = errors.New("storage: not found")

// Store is the spatial store contract consumed by the eligibility gate.
// Implementations execute queries only; all business rules live above.
type Store interface {
	// RiderByEmail resolves a rider account. Returns ErrNotFound when no
	// account matches.
	RiderByEmail(ctx context.Context, email string) (models.Rider, error)

	// ContainingServiceAreas returns every service area whose polygon
	// contains the coordinate. Zero results is a normal outcome.
	ContainingServiceAreas(ctx context.Context, c models.Coord) ([]models.ServiceArea, error)

	// AvailableBikesIn returns the non-faulty, available bikes located
	// inside the service area's polygon. An empty slice is a normal
	// outcome, not an error.
	AvailableBikesIn(ctx context.Context, area models.ServiceArea) ([]models.Bike, error)

	// AppendHistory appends one availability history entry. The entry is
	// never updated or deleted afterwards.
	AppendHistory(ctx context.Context, e models.AvailabilityHistoryEntry) error

	// Ping verifies the store is reachable; used by the health endpoint.
	Ping(ctx context.Context) error
}
