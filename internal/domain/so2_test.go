package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSamples() []any {
	return []any{
		map[string]any{"precision": -4.99, "pressure": 1000.0, "value": 8.17e-08},
	}
}

func TestNewSO2Index(t *testing.T) {
	t.Run("valid observation", func(t *testing.T) {
		idx, err := NewSO2Index(testReferenceTime, testLocation(t), "hour", testSamples(), testReceptionTime)

		require.NoError(t, err)
		assert.Equal(t, testReferenceTime, idx.ReferenceTime())
		assert.Equal(t, "hour", idx.Interval())
		assert.Len(t, idx.Samples(), 1)
		assert.Equal(t, testReceptionTime, idx.ReceptionTime())
	})

	t.Run("empty sample list is valid", func(t *testing.T) {
		idx, err := NewSO2Index(testReferenceTime, testLocation(t), "", []any{}, testReceptionTime)

		require.NoError(t, err)
		assert.Empty(t, idx.Samples())
	})

	t.Run("nil sample list rejected", func(t *testing.T) {
		_, err := NewSO2Index(testReferenceTime, testLocation(t), "", nil, testReceptionTime)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("negative reference time rejected", func(t *testing.T) {
		_, err := NewSO2Index(-1, testLocation(t), "", testSamples(), testReceptionTime)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("negative reception time rejected", func(t *testing.T) {
		_, err := NewSO2Index(testReferenceTime, testLocation(t), "", testSamples(), -1)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("sample list copied at construction", func(t *testing.T) {
		samples := testSamples()
		idx, err := NewSO2Index(testReferenceTime, testLocation(t), "", samples, testReceptionTime)
		require.NoError(t, err)

		samples[0] = "overwritten"

		assert.IsType(t, map[string]any{}, idx.Samples()[0])
	})
}

func TestSO2IndexTimeAccessors(t *testing.T) {
	idx, err := NewSO2Index(testReferenceTime, testLocation(t), "", testSamples(), testReceptionTime)
	require.NoError(t, err)

	assert.Equal(t, "2020-07-10 12:00:00+00", idx.ReferenceTimeISO())
	assert.Equal(t, time.Date(2020, 7, 10, 12, 0, 0, 0, time.UTC), idx.ReferenceTimeDate())
	assert.Equal(t, "2020-07-10 12:01:00+00", idx.ReceptionTimeISO())
}

func TestSO2IndexIsForecast(t *testing.T) {
	now := time.Date(2020, 7, 10, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	tests := []struct {
		name          string
		referenceTime int64
		expected      bool
	}{
		{"future reference time", now.Unix() + 1, true},
		{"same instant is not a forecast", now.Unix(), false},
		{"past reference time", now.Unix() - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := NewSO2Index(tt.referenceTime, testLocation(t), "", testSamples(), testReceptionTime)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, idx.IsForecast())
		})
	}
}

func TestParseSO2Index(t *testing.T) {
	now := time.Date(2020, 7, 10, 12, 1, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	validPayload := func() map[string]any {
		return map[string]any{
			"time": "2020-07-10T12:00:00Z",
			"location": map[string]any{
				"longitude": 8.55,
				"latitude":  47.37,
			},
			"data": testSamples(),
		}
	}

	t.Run("provider payload", func(t *testing.T) {
		idx, err := ParseSO2Index(validPayload())

		require.NoError(t, err)
		assert.Equal(t, testReferenceTime, idx.ReferenceTime())
		assert.Equal(t, 8.55, idx.Location().Lon())
		assert.Equal(t, 47.37, idx.Location().Lat())
		assert.Equal(t, testSamples(), idx.Samples())
		assert.Empty(t, idx.Interval())
		assert.Equal(t, now.Unix(), idx.ReceptionTime())
	})

	t.Run("string-quoted coordinates coerce", func(t *testing.T) {
		payload := map[string]any{
			"time": "2020-01-01T00:00:00Z",
			"location": map[string]any{
				"longitude": "1.0",
				"latitude":  "2.0",
			},
			"data": []any{map[string]any{"a": 1.0}},
		}

		idx, err := ParseSO2Index(payload)

		require.NoError(t, err)
		assert.Equal(t, int64(1577836800), idx.ReferenceTime())
		assert.Equal(t, 1.0, idx.Location().Lon())
		assert.Equal(t, 2.0, idx.Location().Lat())
	})

	t.Run("nil payload", func(t *testing.T) {
		_, err := ParseSO2Index(nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPayloadAbsent)
	})

	tests := []struct {
		name     string
		mutate   func(map[string]any)
		contains string
	}{
		{"missing time", func(p map[string]any) { delete(p, "time") }, "time"},
		{"missing location", func(p map[string]any) { delete(p, "location") }, "location"},
		{"missing longitude", func(p map[string]any) { delete(p["location"].(map[string]any), "longitude") }, "longitude"},
		{"missing latitude", func(p map[string]any) { delete(p["location"].(map[string]any), "latitude") }, "latitude"},
		{"missing data", func(p map[string]any) { delete(p, "data") }, "data"},
		{"unparseable time", func(p map[string]any) { p["time"] = "yesterday at noon" }, "yesterday"},
		{"non-object location", func(p map[string]any) { p["location"] = "somewhere" }, "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			_, err := ParseSO2Index(payload)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	t.Run("non-list data is an invariant violation", func(t *testing.T) {
		payload := validPayload()
		payload["data"] = "not a list"

		_, err := ParseSO2Index(payload)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.NotErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestSO2IndexToMap(t *testing.T) {
	t.Run("parsed record has null interval", func(t *testing.T) {
		idx, err := NewSO2Index(testReferenceTime, testLocation(t), "", testSamples(), testReceptionTime)
		require.NoError(t, err)

		expected := map[string]any{
			"reference_time": testReferenceTime,
			"location": map[string]any{
				"name": nil,
				"coordinates": map[string]any{
					"lon": 8.55,
					"lat": 47.37,
				},
				"country": nil,
			},
			"interval":       nil,
			"so2_samples":    testSamples(),
			"reception_time": testReceptionTime,
		}
		assert.Equal(t, expected, idx.ToMap())
	})

	t.Run("set interval passes through", func(t *testing.T) {
		idx, err := NewSO2Index(testReferenceTime, testLocation(t), "hour", testSamples(), testReceptionTime)
		require.NoError(t, err)

		assert.Equal(t, "hour", idx.ToMap()["interval"])
	})
}

func TestSO2IndexString(t *testing.T) {
	idx, err := NewSO2Index(testReferenceTime, testLocation(t), "hour", testSamples(), testReceptionTime)
	require.NoError(t, err)

	s := idx.String()
	assert.Contains(t, s, "2020-07-10 12:00:00+00")
	assert.Contains(t, s, "hour")
}
