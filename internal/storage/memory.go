package storage

import (
	"context"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/example/fleet-availability/internal/geo"
	"github.com/example/fleet-availability/internal/models"
)

// MemoryStore is an in-process Store for local runs and tests. Service
// areas are indexed in an R-tree by bounding box; candidates from the
// index are confirmed with an exact point-in-polygon test, mirroring what
// the spatial extension does with its GiST index.
type MemoryStore struct {
	mu      sync.RWMutex
	riders  map[string]models.Rider // keyed by email
	areas   map[int64]models.ServiceArea
	index   *rtreego.Rtree
	bikes   []models.Bike
	history []models.AvailabilityHistoryEntry
}

type areaItem struct {
	id   int64
	rect rtreego.Rect
}

func (a *areaItem) Bounds() rtreego.Rect { return a.rect }

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		riders: make(map[string]models.Rider),
		areas:  make(map[int64]models.ServiceArea),
		index:  rtreego.NewTree(2, 25, 50),
	}
}

func (m *MemoryStore) AddRider(r models.Rider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riders[r.Email] = r
}

func (m *MemoryStore) AddServiceArea(a models.ServiceArea) error {
	minLat, minLon, maxLat, maxLon := geo.Bounds(a.Polygon)
	// rtreego rejects zero-length sides
	rect, err := rtreego.NewRect(
		rtreego.Point{minLat, minLon},
		[]float64{maxLat - minLat + 1e-9, maxLon - minLon + 1e-9},
	)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.areas[a.ID] = a
	m.index.Insert(&areaItem{id: a.ID, rect: rect})
	return nil
}

func (m *MemoryStore) AddBike(b models.Bike) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bikes = append(m.bikes, b)
}

func (m *MemoryStore) RiderByEmail(_ context.Context, email string) (models.Rider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.riders[email]
	if !ok {
		return models.Rider{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) ContainingServiceAreas(_ context.Context, c models.Coord) ([]models.ServiceArea, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	point := rtreego.Point{c.Lat, c.Lon}
	var areas []models.ServiceArea
	for _, hit := range m.index.SearchIntersect(point.ToRect(1e-9)) {
		area := m.areas[hit.(*areaItem).id]
		if geo.Contains(area.Polygon, c) {
			areas = append(areas, area)
		}
	}
	return areas, nil
}

func (m *MemoryStore) AvailableBikesIn(_ context.Context, area models.ServiceArea) ([]models.Bike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Bike{}
	for _, b := range m.bikes {
		if b.IsFaulty || b.Status != models.BikeAvailable {
			continue
		}
		if geo.Contains(area.Polygon, models.Coord{Lat: b.Lat, Lon: b.Lon}) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemoryStore) AppendHistory(_ context.Context, e models.AvailabilityHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, e)
	return nil
}

// History returns a copy of the appended entries, for tests and local
// inspection.
func (m *MemoryStore) History() []models.AvailabilityHistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.AvailabilityHistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
