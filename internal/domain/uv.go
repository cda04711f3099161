package domain

import (
	"fmt"
	"time"

	"github.com/couchcryptid/weather-index-etl/internal/timefmt"
)

// Risk is an exposure risk band for ultraviolet intensity.
type Risk string

const (
	RiskLow      Risk = "low"
	RiskModerate Risk = "moderate"
	RiskHigh     Risk = "high"
	RiskVeryHigh Risk = "very high"
	RiskExtreme  Risk = "extreme"
)

// ClassifyUVIntensity maps a UV intensity value to its exposure risk band.
// Values outside every band, including negatives, classify as extreme.
func ClassifyUVIntensity(v float64) Risk {
	switch {
	case v >= 0 && v < 2.9:
		return RiskLow
	case v >= 2.9 && v < 5.9:
		return RiskModerate
	case v >= 5.9 && v < 7.9:
		return RiskHigh
	case v >= 7.9 && v < 10.9:
		return RiskVeryHigh
	default:
		return RiskExtreme
	}
}

// UVIndex is one ultraviolet intensity observation. Values are immutable once
// constructed; all fields are set exactly once and only read thereafter.
type UVIndex struct {
	referenceTime int64
	location      Location
	value         float64
	receptionTime int64
}

// NewUVIndex validates the observation invariants and returns an immutable
// record. Reference and reception times are unix seconds.
func NewUVIndex(referenceTime int64, location Location, value float64, receptionTime int64) (UVIndex, error) {
	if referenceTime < 0 {
		return UVIndex{}, fmt.Errorf("%w: reference time must not be negative, got %d", ErrInvalidArgument, referenceTime)
	}
	if value < 0 {
		return UVIndex{}, fmt.Errorf("%w: uv intensity must not be negative, got %g", ErrInvalidArgument, value)
	}
	if receptionTime < 0 {
		return UVIndex{}, fmt.Errorf("%w: reception time must not be negative, got %d", ErrInvalidArgument, receptionTime)
	}
	return UVIndex{
		referenceTime: referenceTime,
		location:      location,
		value:         value,
		receptionTime: receptionTime,
	}, nil
}

// ParseUVIndex builds a UVIndex from a decoded provider payload. The payload
// carries coordinates flat ("lon", "lat"), the reference time as a unix integer
// ("date"), and the intensity ("value"). Reception time is stamped from the
// package clock.
func ParseUVIndex(payload map[string]any) (UVIndex, error) {
	if payload == nil {
		return UVIndex{}, fmt.Errorf("parse uv index: %w", ErrPayloadAbsent)
	}

	referenceTime, err := intField(payload, "date")
	if err != nil {
		return UVIndex{}, fmt.Errorf("parse uv index: %w: %w", ErrMalformedPayload, err)
	}
	lon, err := floatField(payload, "lon")
	if err != nil {
		return UVIndex{}, fmt.Errorf("parse uv index: %w: %w", ErrMalformedPayload, err)
	}
	lat, err := floatField(payload, "lat")
	if err != nil {
		return UVIndex{}, fmt.Errorf("parse uv index: %w: %w", ErrMalformedPayload, err)
	}
	value, err := floatField(payload, "value")
	if err != nil {
		return UVIndex{}, fmt.Errorf("parse uv index: %w: %w", ErrMalformedPayload, err)
	}

	place, err := NewLocation("", lon, lat, "")
	if err != nil {
		return UVIndex{}, fmt.Errorf("parse uv index: %w", err)
	}
	idx, err := NewUVIndex(referenceTime, place, value, clock.Now().Unix())
	if err != nil {
		return UVIndex{}, fmt.Errorf("parse uv index: %w", err)
	}
	return idx, nil
}

func (u UVIndex) ReferenceTime() int64 { return u.referenceTime }

// ReferenceTimeISO renders the reference time in the canonical ISO-8601 layout.
func (u UVIndex) ReferenceTimeISO() string { return timefmt.ToISO8601(u.referenceTime) }

// ReferenceTimeDate returns the reference time as a UTC time.Time.
func (u UVIndex) ReferenceTimeDate() time.Time { return timefmt.ToDate(u.referenceTime) }

func (u UVIndex) ReceptionTime() int64         { return u.receptionTime }
func (u UVIndex) ReceptionTimeISO() string     { return timefmt.ToISO8601(u.receptionTime) }
func (u UVIndex) ReceptionTimeDate() time.Time { return timefmt.ToDate(u.receptionTime) }

func (u UVIndex) Location() Location { return u.location }
func (u UVIndex) Value() float64     { return u.value }

// IsForecast reports whether the observation refers to a future instant.
// An observation at exactly the current instant is not a forecast.
func (u UVIndex) IsForecast() bool {
	return clock.Now().Unix() < u.referenceTime
}

// ExposureRisk classifies this observation's intensity.
func (u UVIndex) ExposureRisk() Risk {
	return ClassifyUVIntensity(u.value)
}

// ToMap emits the canonical serialized shape.
func (u UVIndex) ToMap() map[string]any {
	return map[string]any{
		"reference_time": u.referenceTime,
		"location":       u.location.ToMap(),
		"value":          u.value,
		"reception_time": u.receptionTime,
	}
}

func (u UVIndex) String() string {
	return fmt.Sprintf("UVIndex(reference_time=%s, value=%g, risk=%s)", u.ReferenceTimeISO(), u.value, u.ExposureRisk())
}
