package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Polygon is a closed region on the map described by its vertices in order.
// The closing edge from the last vertex back to the first is implicit.
// It is stored as a jsonb column.
type Polygon []GeographyPoint

// Value marshals the polygon to JSON for storage.
func (p Polygon) Value() (driver.Value, error) {
	if len(p) < 3 {
		return nil, fmt.Errorf("polygon: need at least 3 vertices, got %d", len(p))
	}
	return json.Marshal(p)
}

// Scan decodes a jsonb polygon column.
func (p *Polygon) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("polygon: unsupported scan type %T", value)
	}
	return json.Unmarshal([]byte(raw), p)
}

func toString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

// Contains reports whether the point lies inside the polygon, using the
// even-odd ray-casting rule. Points exactly on an edge may land on either
// side; zone boundaries are not drawn that tight in practice.
func (p Polygon) Contains(lat, lng float64) bool {
	if len(p) < 3 {
		return false
	}

	inside := false
	j := len(p) - 1
	for i := 0; i < len(p); i++ {
		vi, vj := p[i], p[j]
		if (vi.Lat > lat) != (vj.Lat > lat) &&
			lng < (vj.Lng-vi.Lng)*(lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}
