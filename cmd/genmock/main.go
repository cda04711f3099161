// Command genmock regenerates the fixture pair under data/mock: raw provider
// envelopes as the collector publishes them, and the canonical records the
// transformer produces from those envelopes. Expected records are built by
// running the actual domain parsers, so the pair always agrees with the code.
//
// The reception clock is frozen at 2020-07-10 12:05:00 UTC so regenerated
// output is byte-identical across runs.
//
// Usage:
//
//	go run ./cmd/genmock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-index-etl/internal/domain"
)

// receptionTime is the frozen instant stamped on every generated record.
var receptionTime = time.Date(2020, time.July, 10, 12, 5, 0, 0, time.UTC)

// uvPayload mirrors the provider's UV endpoint body. Coordinates are any
// because the provider sometimes quotes them as strings.
type uvPayload struct {
	Lat   any     `json:"lat"`
	Lon   any     `json:"lon"`
	Date  int64   `json:"date"`
	Value float64 `json:"value"`
}

// so2Payload mirrors the provider's SO2 endpoint body.
type so2Payload struct {
	Time     string      `json:"time"`
	Location so2Location `json:"location"`
	Data     []so2Sample `json:"data"`
}

type so2Location struct {
	Longitude any `json:"longitude"`
	Latitude  any `json:"latitude"`
}

type so2Sample struct {
	Precision float64 `json:"precision"`
	Pressure  float64 `json:"pressure"`
	Value     float64 `json:"value"`
}

// envelopeFixture matches domain.Envelope on the wire but keeps the payload
// typed so the generated JSON preserves provider field order.
type envelopeFixture struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// expectedRecord pairs a kind with the canonical record map the transformer
// must produce for the envelope at the same position in the payloads file.
type expectedRecord struct {
	Kind   string         `json:"kind"`
	Record map[string]any `json:"record"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	payloadsOut := flag.String("payloads-out", "data/mock/index_payloads_200710_combined.json", "output path for the raw envelope fixture")
	expectedOut := flag.String("expected-out", "data/mock/index_records_200710_expected.json", "output path for the expected canonical records")
	flag.Parse()

	domain.SetClock(clockwork.NewFakeClockAt(receptionTime))
	defer domain.SetClock(nil)

	envelopes := buildEnvelopes()
	expected, err := buildExpected(envelopes)
	if err != nil {
		return err
	}

	if err := writeJSON(*payloadsOut, envelopes); err != nil {
		return fmt.Errorf("write payloads: %w", err)
	}
	log.Printf("wrote %d envelopes to %s", len(envelopes), *payloadsOut)

	if err := writeJSON(*expectedOut, expected); err != nil {
		return fmt.Errorf("write expected records: %w", err)
	}
	log.Printf("wrote %d expected records to %s", len(expected), *expectedOut)

	counts := map[string]int{}
	for _, e := range expected {
		counts[e.Kind]++
	}
	log.Printf("kinds: %d uv, %d so2", counts[domain.KindUV], counts[domain.KindSO2])
	return nil
}

// buildEnvelopes returns one uv and one so2 envelope per location, stepping
// back hourly from 2020-07-10 12:00 UTC. The third pair carries string
// coordinates and an empty sample list to cover provider quirks the parsers
// must tolerate.
func buildEnvelopes() []envelopeFixture {
	return []envelopeFixture{
		{Kind: domain.KindUV, Payload: uvPayload{
			Lat: 47.37, Lon: 8.55, Date: 1594382400, Value: 6.53,
		}},
		{Kind: domain.KindSO2, Payload: so2Payload{
			Time:     "2020-07-10T12:00:00Z",
			Location: so2Location{Longitude: 8.55, Latitude: 47.37},
			Data: []so2Sample{
				{Precision: -4.99, Pressure: 1000, Value: 8.17e-8},
			},
		}},
		{Kind: domain.KindUV, Payload: uvPayload{
			Lat: "51.51", Lon: "-0.13", Date: 1594378800, Value: 2.9,
		}},
		{Kind: domain.KindSO2, Payload: so2Payload{
			Time:     "2020-07-10T11:00:00Z",
			Location: so2Location{Longitude: -0.13, Latitude: 51.51},
			Data: []so2Sample{
				{Precision: -4.99, Pressure: 1000, Value: 3.14e-8},
				{Precision: -4.99, Pressure: 916.91, Value: 2.52e-8},
			},
		}},
		{Kind: domain.KindUV, Payload: uvPayload{
			Lat: -33.87, Lon: 151.21, Date: 1594375200, Value: 0.85,
		}},
		{Kind: domain.KindSO2, Payload: so2Payload{
			Time:     "2020-07-10T10:00:00Z",
			Location: so2Location{Longitude: "151.21", Latitude: "-33.87"},
			Data:     []so2Sample{},
		}},
		{Kind: domain.KindUV, Payload: uvPayload{
			Lat: 19.43, Lon: -99.13, Date: 1594371600, Value: 11.2,
		}},
		{Kind: domain.KindSO2, Payload: so2Payload{
			Time:     "2020-07-10T09:00:00Z",
			Location: so2Location{Longitude: -99.13, Latitude: 19.43},
			Data: []so2Sample{
				{Precision: -4.99, Pressure: 770.51, Value: 6.06e-8},
			},
		}},
	}
}

// buildExpected runs each envelope through the same parse path the pipeline
// uses and captures the canonical record map.
func buildExpected(envelopes []envelopeFixture) ([]expectedRecord, error) {
	expected := make([]expectedRecord, 0, len(envelopes))
	for i, fixture := range envelopes {
		value, err := json.Marshal(fixture)
		if err != nil {
			return nil, fmt.Errorf("envelope %d: marshal: %w", i, err)
		}
		env, err := domain.ParseEnvelope(value)
		if err != nil {
			return nil, fmt.Errorf("envelope %d: %w", i, err)
		}
		payload, err := env.DecodePayload()
		if err != nil {
			return nil, fmt.Errorf("envelope %d: %w", i, err)
		}

		var rec domain.Record
		switch env.Kind {
		case domain.KindUV:
			rec, err = domain.ParseUVIndex(payload)
		case domain.KindSO2:
			rec, err = domain.ParseSO2Index(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("envelope %d: %w", i, err)
		}
		expected = append(expected, expectedRecord{Kind: env.Kind, Record: rec.ToMap()})
	}
	return expected, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
