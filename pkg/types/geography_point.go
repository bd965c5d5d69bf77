package types

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeographyPoint is a WGS84 coordinate stored in a PostGIS geography
// column. Addresses carry one so delivery-zone containment checks can run
// in SQL.
type GeographyPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Value writes an EWKT literal. PostGIS casts it to geography on insert.
func (g GeographyPoint) Value() (driver.Value, error) {
	return fmt.Sprintf("SRID=4326;POINT(%f %f)", g.Lng, g.Lat), nil
}

// Scan accepts whatever shape the driver hands back, EWKT text or raw WKB
// bytes, since gorm reads differ between plain selects and ST_AsText
// projections.
func (g *GeographyPoint) Scan(value interface{}) error {
	if value == nil {
		*g = GeographyPoint{}
		return nil
	}

	switch v := value.(type) {
	case string:
		return g.scanText(v)
	case []byte:
		text := strings.TrimSpace(string(v))
		upper := strings.ToUpper(text)
		if strings.HasPrefix(upper, "SRID=") || strings.HasPrefix(upper, "POINT(") {
			return g.scanText(text)
		}
		return g.scanWKB(v)
	default:
		if stringer, ok := value.(fmt.Stringer); ok {
			return g.scanText(stringer.String())
		}
		return fmt.Errorf("geography: unsupported scan type %T", value)
	}
}

func (g *GeographyPoint) scanText(raw string) error {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToUpper(raw), "SRID=") {
		if idx := strings.Index(raw, ";"); idx != -1 {
			raw = strings.TrimSpace(raw[idx+1:])
		}
	}
	if !strings.HasPrefix(strings.ToUpper(raw), "POINT(") || !strings.HasSuffix(raw, ")") {
		return fmt.Errorf("geography: unsupported text %q", raw)
	}

	// EWKT orders coordinates lng then lat.
	coords := strings.Fields(strings.TrimSpace(raw[len("POINT(") : len(raw)-1]))
	if len(coords) != 2 {
		return fmt.Errorf("geography: unexpected POINT content %q", raw)
	}
	lng, err := parseCoordinate(coords[0])
	if err != nil {
		return err
	}
	lat, err := parseCoordinate(coords[1])
	if err != nil {
		return err
	}

	g.Lng, g.Lat = lng, lat
	return nil
}

// scanWKB decodes the 21-byte point form: byte order, uint32 geometry
// type, then two float64 coordinates.
func (g *GeographyPoint) scanWKB(raw []byte) error {
	if len(raw) < 21 {
		return fmt.Errorf("geography: wkb too short")
	}

	var order binary.ByteOrder
	switch raw[0] {
	case 0:
		order = binary.BigEndian
	case 1:
		order = binary.LittleEndian
	default:
		return fmt.Errorf("geography: invalid byte order %d", raw[0])
	}
	if geomType := order.Uint32(raw[1:5]); geomType != 1 {
		return fmt.Errorf("geography: unexpected geometry type %d", geomType)
	}

	g.Lng = math.Float64frombits(order.Uint64(raw[5:13]))
	g.Lat = math.Float64frombits(order.Uint64(raw[13:21]))
	return nil
}

func parseCoordinate(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("geography: empty coordinate")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("geography: parse coordinate %w", err)
	}
	return f, nil
}
