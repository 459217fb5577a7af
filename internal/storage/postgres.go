package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/fleet-availability/internal/geo"
	"github.com/example/fleet-availability/internal/models"
	"github.com/example/fleet-availability/internal/observability"
)

// PostgresStore executes the spatial queries against Postgres with the
// PostGIS extension. Geometry columns are SRID 4326; containment tests
// run in the database via ST_Contains so bike and area filtering happens
// where the spatial index lives.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresStore opens a pooled connection and verifies it. The pool is
// safe for concurrent checkout; callers share one store across requests.
func NewPostgresStore(dsn string, timeout time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PostgresStore{db: db, timeout: timeout}, nil
}

func (p *PostgresStore) RiderByEmail(ctx context.Context, email string) (models.Rider, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	defer observe("rider_by_email")()

	var r models.Rider
	err := p.db.QueryRowContext(ctx,
		`SELECT id, email, balance, is_blocked FROM riders WHERE email = $1`,
		email,
	).Scan(&r.ID, &r.Email, &r.Balance, &r.Blocked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rider{}, ErrNotFound
	}
	if err != nil {
		return models.Rider{}, fmt.Errorf("storage: rider lookup: %w", err)
	}
	return r, nil
}

func (p *PostgresStore) ContainingServiceAreas(ctx context.Context, c models.Coord) ([]models.ServiceArea, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	defer observe("containing_service_areas")()

	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, city_id, ST_AsText(area)
		 FROM service_areas
		 WHERE ST_Contains(area, ST_SetSRID(ST_MakePoint($1, $2), 4326))`,
		c.Lon, c.Lat,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: service area query: %w", err)
	}
	defer rows.Close()

	var areas []models.ServiceArea
	for rows.Next() {
		var a models.ServiceArea
		var wkt string
		if err := rows.Scan(&a.ID, &a.Name, &a.CityID, &wkt); err != nil {
			return nil, fmt.Errorf("storage: service area scan: %w", err)
		}
		a.Polygon, err = geo.ParseWKT(wkt)
		if err != nil {
			return nil, fmt.Errorf("storage: service area %d geometry: %w", a.ID, err)
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: service area rows: %w", err)
	}
	return areas, nil
}

func (p *PostgresStore) AvailableBikesIn(ctx context.Context, area models.ServiceArea) ([]models.Bike, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	defer observe("available_bikes_in")()

	rows, err := p.db.QueryContext(ctx,
		`SELECT b.id, b.designation, b.latitude, b.longitude, b.status, b.is_faulty, b.category
		 FROM bikes b
		 WHERE b.is_faulty = false
		   AND b.status = $1
		   AND ST_Contains(
		     (SELECT area FROM service_areas WHERE id = $2),
		     ST_SetSRID(ST_MakePoint(b.longitude, b.latitude), 4326)
		   )`,
		models.BikeAvailable, area.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: bike query: %w", err)
	}
	defer rows.Close()

	bikes := []models.Bike{}
	for rows.Next() {
		var b models.Bike
		if err := rows.Scan(&b.ID, &b.Designation, &b.Lat, &b.Lon, &b.Status, &b.IsFaulty, &b.Category); err != nil {
			return nil, fmt.Errorf("storage: bike scan: %w", err)
		}
		bikes = append(bikes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: bike rows: %w", err)
	}
	return bikes, nil
}

func (p *PostgresStore) AppendHistory(ctx context.Context, e models.AvailabilityHistoryEntry) error {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	defer observe("append_history")()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO availability_history (id, rider_id, latitude, longitude, response, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.RiderID, e.Location.Lat, e.Location.Lon, e.Payload, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: history insert: %w", err)
	}
	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *PostgresStore) Close() error { return p.db.Close() }

func (p *PostgresStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func observe(query string) func() {
	start := time.Now()
	return func() {
		observability.StoreCallDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}
