package area

import (
	"context"
	"log/slog"
	"sort"

	"github.com/example/fleet-availability/internal/geo"
	"github.com/example/fleet-availability/internal/models"
)

// Source is the slice of the spatial store the resolver needs.
type Source interface {
	ContainingServiceAreas(ctx context.Context, c models.Coord) ([]models.ServiceArea, error)
}

// Resolver maps a coordinate to the service area that contains it.
//
// A point inside two overlapping areas is an operator error in the
// reference data; the resolver still has to answer deterministically, so
// it picks the smallest polygon (the more specific area) and breaks any
// remaining tie by lowest ID. Ambiguities are logged at WARN so fleet
// operations can fix the overlap.
type Resolver struct {
	Source Source
	Cache  *Cache // optional read-through cache
	Logger *slog.Logger
}

// Resolve returns the containing service area, or ok=false when the
// coordinate is outside every known area.
func (r *Resolver) Resolve(ctx context.Context, c models.Coord) (models.ServiceArea, bool, error) {
	if r.Cache != nil {
		if a, ok := r.Cache.Get(ctx, c); ok {
			return a, true, nil
		}
	}

	areas, err := r.Source.ContainingServiceAreas(ctx, c)
	if err != nil {
		return models.ServiceArea{}, false, err
	}
	if len(areas) == 0 {
		return models.ServiceArea{}, false, nil
	}

	if len(areas) > 1 {
		sort.Slice(areas, func(i, j int) bool {
			ai, aj := geo.Area(areas[i].Polygon), geo.Area(areas[j].Polygon)
			if ai != aj {
				return ai < aj
			}
			return areas[i].ID < areas[j].ID
		})
		if r.Logger != nil {
			r.Logger.Warn("overlapping service areas",
				"latitude", c.Lat, "longitude", c.Lon,
				"picked", areas[0].Name, "candidates", len(areas))
		}
	}

	winner := areas[0]
	if r.Cache != nil {
		r.Cache.Put(ctx, c, winner)
	}
	return winner, true, nil
}
