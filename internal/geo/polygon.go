package geo

import (
	"math"

	"github.com/example/fleet-availability/internal/models"
)

// Contains reports whether c lies inside the polygon ring, using the
// even-odd ray casting rule. Points on an edge count as inside, which
// matches how the spatial store's ST_Contains treats boundary bikes
// closely enough for service-area sized polygons.
func Contains(p models.Polygon, c models.Coord) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := p[i], p[j]
		if onSegment(vi, vj, c) {
			return true
		}
		if (vi.Lat > c.Lat) != (vj.Lat > c.Lat) {
			x := (vj.Lon-vi.Lon)*(c.Lat-vi.Lat)/(vj.Lat-vi.Lat) + vi.Lon
			if c.Lon < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Area returns the planar shoelace area of the ring in squared degrees.
// It is only used to rank overlapping service areas, so the lack of a
// projection is fine: the comparison is between polygons covering the
// same neighbourhood.
func Area(p models.Polygon) float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	sum := 0.0
	j := n - 1
	for i := 0; i < n; i++ {
		sum += (p[j].Lon + p[i].Lon) * (p[j].Lat - p[i].Lat)
		j = i
	}
	return math.Abs(sum) / 2
}

// Bounds returns the axis-aligned bounding box of the ring as
// (minLat, minLon, maxLat, maxLon).
func Bounds(p models.Polygon) (minLat, minLon, maxLat, maxLon float64) {
	minLat, minLon = math.Inf(1), math.Inf(1)
	maxLat, maxLon = math.Inf(-1), math.Inf(-1)
	for _, v := range p {
		minLat = math.Min(minLat, v.Lat)
		minLon = math.Min(minLon, v.Lon)
		maxLat = math.Max(maxLat, v.Lat)
		maxLon = math.Max(maxLon, v.Lon)
	}
	return
}

const onSegmentEps = 1e-9

func onSegment(a, b, c models.Coord) bool {
	cross := (b.Lat-a.Lat)*(c.Lon-a.Lon) - (b.Lon-a.Lon)*(c.Lat-a.Lat)
	if math.Abs(cross) > onSegmentEps {
		return false
	}
	return c.Lat >= math.Min(a.Lat, b.Lat)-onSegmentEps &&
		c.Lat <= math.Max(a.Lat, b.Lat)+onSegmentEps &&
		c.Lon >= math.Min(a.Lon, b.Lon)-onSegmentEps &&
		c.Lon <= math.Max(a.Lon, b.Lon)+onSegmentEps
}
