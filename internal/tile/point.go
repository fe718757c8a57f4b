package tile

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePoint builds a GeoPoint from user-entered strings.
// Empty fields default to 0.
func ParsePoint(lat, lon, zoom string) (GeoPoint, error) {
	var p GeoPoint
	var err error

	if p.Latitude, err = parseFloat(lat); err != nil {
		return GeoPoint{}, fmt.Errorf("latitude: %w", err)
	}
	if p.Longitude, err = parseFloat(lon); err != nil {
		return GeoPoint{}, fmt.Errorf("longitude: %w", err)
	}

	zoom = strings.TrimSpace(zoom)
	if zoom != "" {
		z, err := strconv.Atoi(zoom)
		if err != nil {
			return GeoPoint{}, fmt.Errorf("zoom: %w", err)
		}
		if z < 0 {
			return GeoPoint{}, fmt.Errorf("zoom: must be non-negative, got %d", z)
		}
		p.Zoom = z
	}

	return p, nil
}

// ParsePointFields parses "lat lon zoom" split into fields.
// Missing trailing fields default to 0.
func ParsePointFields(fields []string) (GeoPoint, error) {
	var lat, lon, zoom string
	if len(fields) > 0 {
		lat = fields[0]
	}
	if len(fields) > 1 {
		lon = fields[1]
	}
	if len(fields) > 2 {
		zoom = fields[2]
	}
	if len(fields) > 3 {
		return GeoPoint{}, fmt.Errorf("expected at most 3 fields, got %d", len(fields))
	}
	return ParsePoint(lat, lon, zoom)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
