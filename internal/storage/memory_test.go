package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/example/fleet-availability/internal/models"
)

func testArea(t *testing.T, m *MemoryStore, id int64, name string) models.ServiceArea {
	t.Helper()
	a := models.ServiceArea{
		ID:     id,
		Name:   name,
		CityID: 1,
		Polygon: models.Polygon{
			{Lat: 12.9, Lon: 77.5},
			{Lat: 12.9, Lon: 77.6},
			{Lat: 13.0, Lon: 77.6},
			{Lat: 13.0, Lon: 77.5},
		},
	}
	if err := m.AddServiceArea(a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestRiderByEmailNotFound(t *testing.T) {
	m := NewMemoryStore()
	_, err := m.RiderByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContainingServiceAreas(t *testing.T) {
	m := NewMemoryStore()
	testArea(t, m, 1, "bengaluru-central")

	areas, err := m.ContainingServiceAreas(context.Background(), models.Coord{Lat: 12.95, Lon: 77.55})
	if err != nil {
		t.Fatal(err)
	}
	if len(areas) != 1 || areas[0].Name != "bengaluru-central" {
		t.Fatalf("unexpected areas: %+v", areas)
	}

	areas, err = m.ContainingServiceAreas(context.Background(), models.Coord{Lat: 20, Lon: 77.55})
	if err != nil {
		t.Fatal(err)
	}
	if len(areas) != 0 {
		t.Fatalf("expected no areas, got %+v", areas)
	}
}

func TestAvailableBikesInFilters(t *testing.T) {
	m := NewMemoryStore()
	area := testArea(t, m, 1, "bengaluru-central")

	m.AddBike(models.Bike{ID: "b1", Lat: 12.95, Lon: 77.55, Status: models.BikeAvailable})
	m.AddBike(models.Bike{ID: "b2", Lat: 12.95, Lon: 77.55, Status: models.BikeAvailable, IsFaulty: true})
	m.AddBike(models.Bike{ID: "b3", Lat: 12.95, Lon: 77.55, Status: models.BikeInUse})
	m.AddBike(models.Bike{ID: "b4", Lat: 40.0, Lon: 70.0, Status: models.BikeAvailable}) // outside

	bikes, err := m.AvailableBikesIn(context.Background(), area)
	if err != nil {
		t.Fatal(err)
	}
	if len(bikes) != 1 || bikes[0].ID != "b1" {
		t.Fatalf("expected only b1, got %+v", bikes)
	}
}

func TestAvailableBikesInEmptyIsNotError(t *testing.T) {
	m := NewMemoryStore()
	area := testArea(t, m, 1, "bengaluru-central")
	bikes, err := m.AvailableBikesIn(context.Background(), area)
	if err != nil {
		t.Fatal(err)
	}
	if bikes == nil || len(bikes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", bikes)
	}
}

func TestAppendHistoryIsAppendOnly(t *testing.T) {
	m := NewMemoryStore()
	for i := 0; i < 3; i++ {
		if err := m.AppendHistory(context.Background(), models.AvailabilityHistoryEntry{ID: "e", RiderID: "r"}); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(m.History()); got != 3 {
		t.Fatalf("expected 3 entries, got %d", got)
	}
}
