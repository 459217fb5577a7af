package fleet

import (
	"context"
	"errors"
	"testing"

	"github.com/example/fleet-availability/internal/models"
)

type fakeSource struct {
	bikes []models.Bike
	err   error
}

func (f *fakeSource) AvailableBikesIn(ctx context.Context, a models.ServiceArea) ([]models.Bike, error) {
	return f.bikes, f.err
}

func TestAvailableInNormalizesNil(t *testing.T) {
	r := &Repository{Source: &fakeSource{}}
	bikes, err := r.AvailableIn(context.Background(), models.ServiceArea{})
	if err != nil {
		t.Fatal(err)
	}
	if bikes == nil || len(bikes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", bikes)
	}
}

func TestAvailableInPassesThrough(t *testing.T) {
	r := &Repository{Source: &fakeSource{bikes: []models.Bike{{ID: "b1"}}}}
	bikes, err := r.AvailableIn(context.Background(), models.ServiceArea{})
	if err != nil {
		t.Fatal(err)
	}
	if len(bikes) != 1 || bikes[0].ID != "b1" {
		t.Fatalf("unexpected bikes: %+v", bikes)
	}
}

func TestAvailableInPropagatesError(t *testing.T) {
	boom := errors.New("query failed")
	r := &Repository{Source: &fakeSource{err: boom}}
	if _, err := r.AvailableIn(context.Background(), models.ServiceArea{}); !errors.Is(err, boom) {
		t.Fatalf("expected error, got %v", err)
	}
}
