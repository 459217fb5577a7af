package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/fleet-availability/internal/models"
)

// EncodeWKT renders the ring as a WKT POLYGON, closing it explicitly as
// the spatial extension requires. WKT orders vertices as "lon lat".
func EncodeWKT(p models.Polygon) string {
	if len(p) == 0 {
		return "POLYGON EMPTY"
	}
	var b strings.Builder
	b.WriteString("POLYGON((")
	for i, v := range p {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g %g", v.Lon, v.Lat)
	}
	fmt.Fprintf(&b, ", %g %g))", p[0].Lon, p[0].Lat)
	return b.String()
}

// ParseWKT parses a WKT POLYGON outer ring. Interior rings (holes) are
// rejected: service areas are simple closed polygons.
func ParseWKT(s string) (models.Polygon, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "POLYGON") {
		return nil, fmt.Errorf("geo: not a POLYGON: %q", s)
	}
	body := strings.TrimSpace(s[len("POLYGON"):])
	if !strings.HasPrefix(body, "((") || !strings.HasSuffix(body, "))") {
		return nil, fmt.Errorf("geo: malformed POLYGON body: %q", s)
	}
	inner := body[2 : len(body)-2]
	if strings.Contains(inner, "(") {
		return nil, fmt.Errorf("geo: polygons with holes are not supported")
	}
	parts := strings.Split(inner, ",")
	ring := make(models.Polygon, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) != 2 {
			return nil, fmt.Errorf("geo: malformed vertex %q", part)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("geo: bad longitude %q: %w", fields[0], err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("geo: bad latitude %q: %w", fields[1], err)
		}
		ring = append(ring, models.Coord{Lat: lat, Lon: lon})
	}
	// drop the explicit closing vertex; closure is implicit in Polygon
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("geo: ring has %d vertices, need at least 3", len(ring))
	}
	return ring, nil
}
