package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/weather-index-etl/internal/timefmt"
)

// Record is the capability set shared by both measurement variants. It is a
// contract only: UVIndex and SO2Index embed no common struct and share no state.
type Record interface {
	ReferenceTime() int64
	ReceptionTime() int64
	Location() Location
	ToMap() map[string]any
}

// SerializeRecord renders a record's canonical map as the sink message value.
// The kind and reception time travel in headers so the canonical payload shape
// stays exactly the documented one.
func SerializeRecord(kind string, rec Record) (OutputEvent, error) {
	value, err := json.Marshal(rec.ToMap())
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize %s record: %w", kind, err)
	}

	return OutputEvent{
		Key:   []byte(recordKey(kind, rec)),
		Value: value,
		Headers: map[string]string{
			"kind":           kind,
			"reception_time": timefmt.ToISO8601(rec.ReceptionTime()),
		},
	}, nil
}

// recordKey produces a deterministic partition key from the record's identity
// fields. Reprocessing the same payload yields the same key, so replays land
// on the same partition in the same order.
func recordKey(kind string, rec Record) string {
	place := rec.Location()
	input := fmt.Sprintf("%s|%.4f|%.4f|%d", kind, place.Lat(), place.Lon(), rec.ReferenceTime())
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if kind == "" {
		return short
	}
	return kind + "-" + short
}
