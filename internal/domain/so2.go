package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/weather-index-etl/internal/timefmt"
)

// SO2Index is one sulphur dioxide pollution observation: an opaque list of
// provider sample measurements taken at one place and instant. Like UVIndex it
// is immutable once constructed.
type SO2Index struct {
	referenceTime int64
	location      Location
	interval      string
	samples       []any
	receptionTime int64
}

// NewSO2Index validates the observation invariants and returns an immutable
// record. The sample list must be present (an empty list is fine) and is
// copied so later mutation of the caller's slice cannot reach the record.
// The interval is optional and carried verbatim.
func NewSO2Index(referenceTime int64, location Location, interval string, samples []any, receptionTime int64) (SO2Index, error) {
	if referenceTime < 0 {
		return SO2Index{}, fmt.Errorf("%w: reference time must not be negative, got %d", ErrInvalidArgument, referenceTime)
	}
	if samples == nil {
		return SO2Index{}, fmt.Errorf("%w: so2 samples must be a list", ErrInvalidArgument)
	}
	if receptionTime < 0 {
		return SO2Index{}, fmt.Errorf("%w: reception time must not be negative, got %d", ErrInvalidArgument, receptionTime)
	}
	copied := make([]any, len(samples))
	copy(copied, samples)
	return SO2Index{
		referenceTime: referenceTime,
		location:      location,
		interval:      interval,
		samples:       copied,
		receptionTime: receptionTime,
	}, nil
}

// ParseSO2Index builds an SO2Index from a decoded provider payload. The payload
// carries the reference time as an ISO string ("time"), coordinates nested under
// "location" with long field names, and the sample list under "data". Parsed
// records have no interval; reception time is stamped from the package clock.
func ParseSO2Index(payload map[string]any) (SO2Index, error) {
	if payload == nil {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w", ErrPayloadAbsent)
	}

	timeStr, err := stringField(payload, "time")
	if err != nil {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w: %w", ErrMalformedPayload, err)
	}
	referenceTime, err := timefmt.ParseISO8601(normalizeProviderTime(timeStr))
	if err != nil {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w: %w", ErrMalformedPayload, err)
	}
	locPayload, err := mapField(payload, "location")
	if err != nil {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w: %w", ErrMalformedPayload, err)
	}
	lon, err := floatField(locPayload, "longitude")
	if err != nil {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w: %w", ErrMalformedPayload, err)
	}
	lat, err := floatField(locPayload, "latitude")
	if err != nil {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w: %w", ErrMalformedPayload, err)
	}
	samplesVal, ok := payload["data"]
	if !ok {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w: missing field %q", ErrMalformedPayload, "data")
	}
	samples, ok := samplesVal.([]any)
	if !ok {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w: so2 samples must be a list, got %T", ErrInvalidArgument, samplesVal)
	}

	place, err := NewLocation("", lon, lat, "")
	if err != nil {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w", err)
	}
	idx, err := NewSO2Index(referenceTime, place, "", samples, clock.Now().Unix())
	if err != nil {
		return SO2Index{}, fmt.Errorf("parse so2 index: %w", err)
	}
	return idx, nil
}

// normalizeProviderTime rewrites provider timestamps ("2020-07-10T12:00:00Z")
// into the canonical layout's shape ("2020-07-10 12:00:00+00").
func normalizeProviderTime(s string) string {
	s = strings.ReplaceAll(s, "Z", "+00")
	return strings.ReplaceAll(s, "T", " ")
}

func (s SO2Index) ReferenceTime() int64 { return s.referenceTime }

// ReferenceTimeISO renders the reference time in the canonical ISO-8601 layout.
func (s SO2Index) ReferenceTimeISO() string { return timefmt.ToISO8601(s.referenceTime) }

// ReferenceTimeDate returns the reference time as a UTC time.Time.
func (s SO2Index) ReferenceTimeDate() time.Time { return timefmt.ToDate(s.referenceTime) }

func (s SO2Index) ReceptionTime() int64         { return s.receptionTime }
func (s SO2Index) ReceptionTimeISO() string     { return timefmt.ToISO8601(s.receptionTime) }
func (s SO2Index) ReceptionTimeDate() time.Time { return timefmt.ToDate(s.receptionTime) }

func (s SO2Index) Location() Location { return s.location }
func (s SO2Index) Interval() string   { return s.interval }

// Samples returns the opaque provider measurements. The slice itself is owned
// by the record; callers must not modify it.
func (s SO2Index) Samples() []any { return s.samples }

// IsForecast reports whether the observation refers to a future instant.
// An observation at exactly the current instant is not a forecast.
func (s SO2Index) IsForecast() bool {
	return clock.Now().Unix() < s.referenceTime
}

// ToMap emits the canonical serialized shape. An unset interval serializes as
// null, matching what parsed records carry.
func (s SO2Index) ToMap() map[string]any {
	var interval any
	if s.interval != "" {
		interval = s.interval
	}
	return map[string]any{
		"reference_time": s.referenceTime,
		"location":       s.location.ToMap(),
		"interval":       interval,
		"so2_samples":    s.samples,
		"reception_time": s.receptionTime,
	}
}

func (s SO2Index) String() string {
	return fmt.Sprintf("SO2Index(reference_time=%s, interval=%q, samples=%d)", s.ReferenceTimeISO(), s.interval, len(s.samples))
}
