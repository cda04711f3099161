// Command validate performs end-to-end integrity checks across the mock
// fixture pair in data/mock: raw provider envelopes and the canonical records
// expected from them. It verifies envelope counts and kinds, transformation
// correctness against the live parsers, canonical record shape, and sink key
// determinism.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -payloads data/mock/index_payloads_200710_combined.json \
//	  -expected data/mock/index_records_200710_expected.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-index-etl/internal/domain"
	"github.com/couchcryptid/weather-index-etl/internal/timefmt"
)

// receptionTime matches the frozen clock cmd/genmock stamps fixtures with.
var receptionTime = time.Date(2020, time.July, 10, 12, 5, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// expectedRecord pairs a kind with the canonical record map expected for the
// envelope at the same position in the payloads file.
type expectedRecord struct {
	Kind   string         `json:"kind"`
	Record map[string]any `json:"record"`
}

func main() {
	payloadsPath := flag.String("payloads", "data/mock/index_payloads_200710_combined.json", "path to the raw envelope fixture")
	expectedPath := flag.String("expected", "data/mock/index_records_200710_expected.json", "path to the expected canonical records")
	flag.Parse()

	if code := run(*payloadsPath, *expectedPath); code != 0 {
		os.Exit(code)
	}
}

func run(payloadsPath, expectedPath string) int {
	// Fix the clock so re-run transformations stamp the same reception time
	// genmock did.
	domain.SetClock(clockwork.NewFakeClockAt(receptionTime))
	defer domain.SetClock(nil)

	fmt.Println("=== Weather Index Fixture Validation ===")
	fmt.Println()

	envelopes, err := loadJSON[json.RawMessage](payloadsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load payloads: %v\n", err)
		return 1
	}

	expected, err := loadJSON[expectedRecord](expectedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load expected records: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateEnvelopeIntegrity(envelopes, expected),
		validateTransformation(envelopes, expected),
		validateCanonicalShape(expected),
		validateSinkKeys(envelopes),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d envelopes, %d expected records\n", len(envelopes), len(expected))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Envelope Integrity ──
// Validates that every payload entry is a well-formed envelope and that the
// two fixtures agree on count and kind ordering.

func validateEnvelopeIntegrity(envelopes []json.RawMessage, expected []expectedRecord) *phase {
	p := &phase{name: "Phase 1: Envelope Integrity"}

	if len(envelopes) != len(expected) {
		p.errorf("count mismatch: %d envelopes, %d expected records", len(envelopes), len(expected))
	}

	kindCounts := map[string]int{}
	for i, raw := range envelopes {
		env, err := domain.ParseEnvelope(raw)
		if err != nil {
			p.errorf("envelope %d: %v", i, err)
			continue
		}
		kindCounts[env.Kind]++

		if _, err := env.DecodePayload(); err != nil {
			p.errorf("envelope %d (%s): %v", i, env.Kind, err)
		}
		if i < len(expected) && env.Kind != expected[i].Kind {
			p.errorf("envelope %d: kind %q but expected record has %q", i, env.Kind, expected[i].Kind)
		}
	}

	expectedCounts := map[string]int{}
	for i := range expected {
		expectedCounts[expected[i].Kind]++
	}
	for _, kind := range []string{domain.KindUV, domain.KindSO2} {
		if kindCounts[kind] != expectedCounts[kind] {
			p.errorf("%s count: %d envelopes, %d expected records", kind, kindCounts[kind], expectedCounts[kind])
		}
	}
	return p
}

// ── Phase 2: Transformation ──
// Re-runs every envelope through the live parsers and diffs the canonical map
// against the expected record.

func validateTransformation(envelopes []json.RawMessage, expected []expectedRecord) *phase {
	p := &phase{name: "Phase 2: Transformation (parsers vs fixture)"}

	for i, raw := range envelopes {
		kind, rec, err := transformEnvelope(raw)
		if err != nil {
			p.errorf("envelope %d: %v", i, err)
			continue
		}
		if i >= len(expected) {
			continue // count mismatch reported in phase 1
		}

		got, err := normalizeRecord(rec.ToMap())
		if err != nil {
			p.errorf("envelope %d (%s): normalize: %v", i, kind, err)
			continue
		}
		if diff := cmp.Diff(expected[i].Record, got); diff != "" {
			p.errorf("envelope %d (%s): record mismatch (-expected +actual):\n%s", i, kind, diff)
		}
	}
	return p
}

// transformEnvelope runs the same parse path the pipeline transformer uses.
func transformEnvelope(value json.RawMessage) (string, domain.Record, error) {
	env, err := domain.ParseEnvelope(value)
	if err != nil {
		return "", nil, err
	}
	payload, err := env.DecodePayload()
	if err != nil {
		return env.Kind, nil, err
	}

	var rec domain.Record
	switch env.Kind {
	case domain.KindUV:
		rec, err = domain.ParseUVIndex(payload)
	case domain.KindSO2:
		rec, err = domain.ParseSO2Index(payload)
	}
	if err != nil {
		return env.Kind, nil, err
	}
	return env.Kind, rec, nil
}

// normalizeRecord round-trips a record map through JSON so numeric types line
// up with the decoded expectations.
func normalizeRecord(rec map[string]any) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Phase 3: Canonical Shape ──
// Validates that expected records carry exactly the documented keys and value
// constraints for their kind.

var canonicalKeys = map[string][]string{
	domain.KindUV:  {"reference_time", "location", "value", "reception_time"},
	domain.KindSO2: {"reference_time", "location", "interval", "so2_samples", "reception_time"},
}

var riskLabels = map[domain.Risk]bool{
	domain.RiskLow:      true,
	domain.RiskModerate: true,
	domain.RiskHigh:     true,
	domain.RiskVeryHigh: true,
	domain.RiskExtreme:  true,
}

func validateCanonicalShape(expected []expectedRecord) *phase {
	p := &phase{name: "Phase 3: Canonical Shape"}
	for i := range expected {
		checkShapeRecord(p, i, &expected[i])
	}
	return p
}

func checkShapeRecord(p *phase, i int, e *expectedRecord) {
	pf := func(format string, args ...any) {
		p.errorf("record %d (%s): "+format, append([]any{i, e.Kind}, args...)...)
	}

	keys, ok := canonicalKeys[e.Kind]
	if !ok {
		pf("unknown kind")
		return
	}
	for _, key := range keys {
		if _, present := e.Record[key]; !present {
			pf("missing key %q", key)
		}
	}
	if len(e.Record) != len(keys) {
		pf("has %d keys, canonical shape has %d", len(e.Record), len(keys))
	}

	checkShapeTimes(pf, e.Record)
	checkShapeLocation(pf, e.Record["location"])

	switch e.Kind {
	case domain.KindUV:
		checkShapeUV(pf, e.Record)
	case domain.KindSO2:
		checkShapeSO2(pf, e.Record)
	}
}

func checkShapeTimes(pf func(string, ...any), record map[string]any) {
	ref, ok := record["reference_time"].(float64)
	if !ok {
		pf("reference_time is %T, want number", record["reference_time"])
	} else if ref < 0 {
		pf("reference_time %v is negative", ref)
	}

	rec, ok := record["reception_time"].(float64)
	if !ok {
		pf("reception_time is %T, want number", record["reception_time"])
	} else if int64(rec) != receptionTime.Unix() {
		pf("reception_time %d does not match the genmock clock %d", int64(rec), receptionTime.Unix())
	}
}

func checkShapeLocation(pf func(string, ...any), v any) {
	loc, ok := v.(map[string]any)
	if !ok {
		pf("location is %T, want object", v)
		return
	}
	for _, key := range []string{"name", "coordinates", "country"} {
		if _, present := loc[key]; !present {
			pf("location missing key %q", key)
		}
	}

	coords, ok := loc["coordinates"].(map[string]any)
	if !ok {
		pf("location.coordinates is %T, want object", loc["coordinates"])
		return
	}
	lon, ok := coords["lon"].(float64)
	if !ok {
		pf("coordinates.lon is %T, want number", coords["lon"])
	} else if lon < -180 || lon > 180 {
		pf("coordinates.lon %v outside [-180, 180]", lon)
	}
	lat, ok := coords["lat"].(float64)
	if !ok {
		pf("coordinates.lat is %T, want number", coords["lat"])
	} else if lat < -90 || lat > 90 {
		pf("coordinates.lat %v outside [-90, 90]", lat)
	}
}

func checkShapeUV(pf func(string, ...any), record map[string]any) {
	value, ok := record["value"].(float64)
	if !ok {
		pf("value is %T, want number", record["value"])
		return
	}
	if value < 0 {
		pf("value %v is negative", value)
	}
	if !riskLabels[domain.ClassifyUVIntensity(value)] {
		pf("value %v classifies to unknown risk label", value)
	}
}

func checkShapeSO2(pf func(string, ...any), record map[string]any) {
	samples, ok := record["so2_samples"].([]any)
	if !ok {
		pf("so2_samples is %T, want list", record["so2_samples"])
		return
	}
	for j, sample := range samples {
		if _, ok := sample.(map[string]any); !ok {
			pf("so2_samples[%d] is %T, want object", j, sample)
		}
	}
	if interval := record["interval"]; interval != nil {
		if _, ok := interval.(string); !ok {
			pf("interval is %T, want string or null", interval)
		}
	}
}

// ── Phase 4: Sink Keys ──
// Validates that serialization yields deterministic, well-formed partition
// keys and headers.

func validateSinkKeys(envelopes []json.RawMessage) *phase {
	p := &phase{name: "Phase 4: Sink Keys (determinism)"}

	wantReception := timefmt.ToISO8601(receptionTime.Unix())
	seen := map[string]int{}

	for i, raw := range envelopes {
		kind, rec, err := transformEnvelope(raw)
		if err != nil {
			continue // parse errors reported in phase 2
		}

		first, err := domain.SerializeRecord(kind, rec)
		if err != nil {
			p.errorf("envelope %d (%s): serialize: %v", i, kind, err)
			continue
		}
		second, err := domain.SerializeRecord(kind, rec)
		if err != nil {
			p.errorf("envelope %d (%s): serialize again: %v", i, kind, err)
			continue
		}

		key := string(first.Key)
		if key != string(second.Key) {
			p.errorf("envelope %d (%s): key not deterministic: %q vs %q", i, kind, key, second.Key)
		}
		checkKeyFormat(p, i, kind, key)

		if prev, dupe := seen[key]; dupe {
			p.errorf("envelope %d (%s): key %q collides with envelope %d", i, kind, key, prev)
		}
		seen[key] = i

		if got := first.Headers["kind"]; got != kind {
			p.errorf("envelope %d: header kind %q, want %q", i, got, kind)
		}
		if got := first.Headers["reception_time"]; got != wantReception {
			p.errorf("envelope %d (%s): header reception_time %q, want %q", i, kind, got, wantReception)
		}
	}
	return p
}

func checkKeyFormat(p *phase, i int, kind, key string) {
	if !strings.HasPrefix(key, kind+"-") {
		p.errorf("envelope %d (%s): key %q lacks kind prefix", i, kind, key)
		return
	}
	digest := strings.TrimPrefix(key, kind+"-")
	if len(digest) != 16 {
		p.errorf("envelope %d (%s): key digest %q has %d chars, want 16", i, kind, digest, len(digest))
	}
	if strings.Trim(digest, "0123456789abcdef") != "" {
		p.errorf("envelope %d (%s): key digest %q is not lowercase hex", i, kind, digest)
	}
}
