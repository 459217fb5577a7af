package fleet

import (
	"context"

	"github.com/example/fleet-availability/internal/models"
)

// Source is the slice of the spatial store the repository needs.
type Source interface {
	AvailableBikesIn(ctx context.Context, area models.ServiceArea) ([]models.Bike, error)
}

// Repository answers "which bikes could this rider take" for a resolved
// service area. Absence of inventory is a normal outcome: callers always
// get a non-nil slice unless the store itself failed.
type Repository struct {
	Source Source
}

func (r *Repository) AvailableIn(ctx context.Context, a models.ServiceArea) ([]models.Bike, error) {
	bikes, err := r.Source.AvailableBikesIn(ctx, a)
	if err != nil {
		return nil, err
	}
	if bikes == nil {
		bikes = []models.Bike{}
	}
	return bikes, nil
}
