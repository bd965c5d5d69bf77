package types

import "testing"

// Roughly the Paris ring road as a coarse quadrilateral.
var parisZone = Polygon{
	{Lat: 48.9022, Lng: 2.2769},
	{Lat: 48.9021, Lng: 2.4097},
	{Lat: 48.8156, Lng: 2.4219},
	{Lat: 48.8180, Lng: 2.2550},
}

func TestPolygonContains(t *testing.T) {
	cases := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{name: "city center", lat: 48.8566, lng: 2.3522, want: true},
		{name: "north edge inside", lat: 48.8900, lng: 2.3400, want: true},
		{name: "versailles", lat: 48.8049, lng: 2.1204, want: false},
		{name: "london", lat: 51.5074, lng: -0.1278, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parisZone.Contains(tc.lat, tc.lng); got != tc.want {
				t.Fatalf("Contains(%f, %f) = %v, want %v", tc.lat, tc.lng, got, tc.want)
			}
		})
	}
}

func TestPolygonContainsDegenerate(t *testing.T) {
	if (Polygon{}).Contains(48.85, 2.35) {
		t.Fatal("empty polygon should contain nothing")
	}
	line := Polygon{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	if line.Contains(0.5, 0.5) {
		t.Fatal("two-vertex polygon should contain nothing")
	}
}

func TestPolygonScanRoundTrip(t *testing.T) {
	val, err := parisZone.Value()
	if err != nil {
		t.Fatalf("Value() returned error: %v", err)
	}

	var scanned Polygon
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	if len(scanned) != len(parisZone) {
		t.Fatalf("expected %d vertices, got %d", len(parisZone), len(scanned))
	}
	if scanned[2].Lat != parisZone[2].Lat {
		t.Fatalf("vertex mismatch after round trip")
	}
}

func TestPolygonScanAcceptsStringAndRejectsOthers(t *testing.T) {
	raw, err := parisZone.Value()
	if err != nil {
		t.Fatalf("Value() returned error: %v", err)
	}

	var fromString Polygon
	if err := fromString.Scan(string(raw.([]byte))); err != nil {
		t.Fatalf("Scan(string) returned error: %v", err)
	}
	if len(fromString) != len(parisZone) {
		t.Fatalf("expected %d vertices, got %d", len(parisZone), len(fromString))
	}

	var bad Polygon
	if err := bad.Scan(42); err == nil {
		t.Fatal("expected error for unsupported scan type")
	}
}

func TestPolygonValueRejectsDegenerate(t *testing.T) {
	if _, err := (Polygon{{Lat: 1, Lng: 1}}).Value(); err == nil {
		t.Fatal("expected error for polygon with fewer than 3 vertices")
	}
}
