package types

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func TestGeographyPointValueIsEWKT(t *testing.T) {
	p := GeographyPoint{Lat: 48.8556, Lng: 2.3603}
	v, err := p.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	literal, ok := v.(string)
	if !ok {
		t.Fatalf("value type %T", v)
	}
	if !strings.HasPrefix(literal, "SRID=4326;POINT(2.36") {
		t.Fatalf("literal %q", literal)
	}
}

func TestGeographyPointScanText(t *testing.T) {
	var p GeographyPoint
	if err := p.Scan("SRID=4326;POINT(2.3603 48.8556)"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if p.Lat != 48.8556 || p.Lng != 2.3603 {
		t.Fatalf("got %+v", p)
	}

	if err := p.Scan("LINESTRING(0 0, 1 1)"); err == nil {
		t.Fatal("non-point text must fail")
	}
}

func TestGeographyPointScanWKB(t *testing.T) {
	raw := make([]byte, 21)
	raw[0] = 1
	binary.LittleEndian.PutUint32(raw[1:5], 1)
	binary.LittleEndian.PutUint64(raw[5:13], math.Float64bits(2.3603))
	binary.LittleEndian.PutUint64(raw[13:21], math.Float64bits(48.8556))

	var p GeographyPoint
	if err := p.Scan(raw); err != nil {
		t.Fatalf("scan wkb: %v", err)
	}
	if p.Lat != 48.8556 || p.Lng != 2.3603 {
		t.Fatalf("got %+v", p)
	}

	if err := p.Scan(raw[:10]); err == nil {
		t.Fatal("truncated wkb must fail")
	}
}

func TestGeographyPointScanNilResets(t *testing.T) {
	p := GeographyPoint{Lat: 1, Lng: 2}
	if err := p.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if p.Lat != 0 || p.Lng != 0 {
		t.Fatalf("got %+v", p)
	}
}
