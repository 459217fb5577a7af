package models

import "time"

type Coord struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Rider is the account record as seen by the eligibility core.
// It is created and mutated by the account-management service; this
// subsystem only reads it.
type Rider struct {
	ID      string
	Email   string
	Balance float64
	Blocked bool
}

// ServiceArea is a named closed polygon in which rides are permitted,
// belonging to a city. Reference data maintained by fleet operations.
type ServiceArea struct {
	ID      int64
	Name    string
	CityID  int64
	Polygon Polygon
}

// Polygon is a simple closed ring of vertices. The first vertex is not
// repeated at the end; closure is implicit.
type Polygon []Coord

// Bike statuses as written by the ride and maintenance workflows. Only
// available bikes are candidates for a ride.
const (
	BikeAvailable   = "available"
	BikeInUse       = "in-use"
	BikeMaintenance = "maintenance"
)

type Bike struct {
	ID          string  `json:"id"`
	Designation int     `json:"designation"`
	Lat         float64 `json:"latitude"`
	Lon         float64 `json:"longitude"`
	Status      string  `json:"status"`
	IsFaulty    bool    `json:"isFaulty"`
	Category    string  `json:"category"`
}

// EligibilityQuery is the per-request unit of work. It is never persisted;
// only the resulting decision is, via the availability history.
type EligibilityQuery struct {
	Email     string
	Location  Coord
	Requested time.Time
}

// EligibilityDecision is the single response shape shared by every
// terminal branch of the gate. Bikes is non-empty only when AllowRide is.
type EligibilityDecision struct {
	AllowRide bool    `json:"allow_ride"`
	Balance   float64 `json:"balance"`
	Bikes     []Bike  `json:"bikes"`
}

// AvailabilityHistoryEntry is one append-only audit record per completed
// fleet lookup, keyed by rider.
type AvailabilityHistoryEntry struct {
	ID        string
	RiderID   string
	Location  Coord
	Payload   []byte // serialized decision JSON, as returned to the caller
	CreatedAt time.Time
}
