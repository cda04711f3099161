package domain

import "fmt"

// Location is the place a measurement was taken. Parser-built locations carry
// only coordinates; name and country stay empty and serialize as null.
type Location struct {
	name    string
	lon     float64
	lat     float64
	country string
}

// NewLocation validates coordinates and returns an immutable Location.
func NewLocation(name string, lon, lat float64, country string) (Location, error) {
	if lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidArgument, lon)
	}
	if lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidArgument, lat)
	}
	return Location{name: name, lon: lon, lat: lat, country: country}, nil
}

func (l Location) Name() string    { return l.name }
func (l Location) Lon() float64    { return l.lon }
func (l Location) Lat() float64    { return l.lat }
func (l Location) Country() string { return l.country }

// ToMap emits the canonical location shape. Unset name and country serialize
// as null, matching the shape parsers produce from coordinate-only payloads.
func (l Location) ToMap() map[string]any {
	var name any
	if l.name != "" {
		name = l.name
	}
	var country any
	if l.country != "" {
		country = l.country
	}
	return map[string]any{
		"name": name,
		"coordinates": map[string]any{
			"lon": l.lon,
			"lat": l.lat,
		},
		"country": country,
	}
}

func (l Location) String() string {
	return fmt.Sprintf("Location(name=%q, lon=%v, lat=%v)", l.name, l.lon, l.lat)
}
