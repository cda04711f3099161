package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testReferenceTime = int64(1594382400) // 2020-07-10 12:00:00+00
	testReceptionTime = int64(1594382460)
)

func testLocation(t *testing.T) Location {
	t.Helper()
	loc, err := NewLocation("", 8.55, 47.37, "")
	require.NoError(t, err)
	return loc
}

func TestClassifyUVIntensity(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected Risk
	}{
		{"zero", 0, RiskLow},
		{"just below moderate", 2.89, RiskLow},
		{"moderate lower bound", 2.9, RiskModerate},
		{"high lower bound", 5.9, RiskHigh},
		{"just below very high", 7.89, RiskHigh},
		{"very high lower bound", 7.9, RiskVeryHigh},
		{"just below extreme", 10.89, RiskVeryHigh},
		{"extreme lower bound", 10.9, RiskExtreme},
		{"far beyond scale", 100, RiskExtreme},
		{"negative falls through to extreme", -1, RiskExtreme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyUVIntensity(tt.value))
		})
	}
}

func TestNewUVIndex(t *testing.T) {
	t.Run("valid observation", func(t *testing.T) {
		idx, err := NewUVIndex(testReferenceTime, testLocation(t), 6.53, testReceptionTime)

		require.NoError(t, err)
		assert.Equal(t, testReferenceTime, idx.ReferenceTime())
		assert.Equal(t, 6.53, idx.Value())
		assert.Equal(t, testReceptionTime, idx.ReceptionTime())
		assert.Equal(t, 8.55, idx.Location().Lon())
	})

	t.Run("zero value is valid", func(t *testing.T) {
		_, err := NewUVIndex(testReferenceTime, testLocation(t), 0, testReceptionTime)

		require.NoError(t, err)
	})

	tests := []struct {
		name          string
		referenceTime int64
		value         float64
		receptionTime int64
	}{
		{"negative reference time", -1, 6.53, testReceptionTime},
		{"negative value", testReferenceTime, -0.1, testReceptionTime},
		{"negative reception time", testReferenceTime, 6.53, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUVIndex(tt.referenceTime, testLocation(t), tt.value, tt.receptionTime)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestUVIndexTimeAccessors(t *testing.T) {
	idx, err := NewUVIndex(testReferenceTime, testLocation(t), 6.53, testReceptionTime)
	require.NoError(t, err)

	assert.Equal(t, "2020-07-10 12:00:00+00", idx.ReferenceTimeISO())
	assert.Equal(t, time.Date(2020, 7, 10, 12, 0, 0, 0, time.UTC), idx.ReferenceTimeDate())
	assert.Equal(t, "2020-07-10 12:01:00+00", idx.ReceptionTimeISO())
	assert.Equal(t, time.Date(2020, 7, 10, 12, 1, 0, 0, time.UTC), idx.ReceptionTimeDate())
}

func TestUVIndexIsForecast(t *testing.T) {
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
			idx, err := NewUVIndex(tt.referenceTime, testLocation(t), 1.0, testReceptionTime)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, idx.IsForecast())
		})
	}
}

func TestUVIndexExposureRisk(t *testing.T) {
	idx, err := NewUVIndex(testReferenceTime, testLocation(t), 6.53, testReceptionTime)
	require.NoError(t, err)

	assert.Equal(t, RiskHigh, idx.ExposureRisk())
}

func TestParseUVIndex(t *testing.T) {
	now := time.Date(2020, 7, 10, 12, 1, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	t.Run("numeric payload", func(t *testing.T) {
		payload := map[string]any{
			"date":  float64(1594382400),
			"lon":   8.55,
			"lat":   47.37,
			"value": 6.53,
		}

		idx, err := ParseUVIndex(payload)

		require.NoError(t, err)
		assert.Equal(t, testReferenceTime, idx.ReferenceTime())
		assert.Equal(t, 8.55, idx.Location().Lon())
		assert.Equal(t, 47.37, idx.Location().Lat())
		assert.Equal(t, 6.53, idx.Value())
		assert.Equal(t, now.Unix(), idx.ReceptionTime())
	})

	t.Run("string-quoted coordinates coerce", func(t *testing.T) {
		payload := map[string]any{
			"date":  float64(1594382400),
			"lon":   "8.55",
			"lat":   "47.37",
			"value": 6.53,
		}

		idx, err := ParseUVIndex(payload)

		require.NoError(t, err)
		assert.Equal(t, 8.55, idx.Location().Lon())
		assert.Equal(t, 47.37, idx.Location().Lat())
	})

	t.Run("nil payload", func(t *testing.T) {
		_, err := ParseUVIndex(nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPayloadAbsent)
		assert.NotErrorIs(t, err, ErrMalformedPayload)
	})

	missingField := []struct {
		name string
		drop string
	}{
		{"missing date", "date"},
		{"missing lon", "lon"},
		{"missing lat", "lat"},
		{"missing value", "value"},
	}

	for _, tt := range missingField {
		t.Run(tt.name, func(t *testing.T) {
			payload := map[string]any{
				"date":  float64(1594382400),
				"lon":   8.55,
				"lat":   47.37,
				"value": 6.53,
			}
			delete(payload, tt.drop)

			_, err := ParseUVIndex(payload)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
			assert.Contains(t, err.Error(), tt.drop)
		})
	}

	t.Run("uncoercible value", func(t *testing.T) {
		payload := map[string]any{
			"date":  float64(1594382400),
			"lon":   8.55,
			"lat":   47.37,
			"value": "not a number",
		}

		_, err := ParseUVIndex(payload)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("out-of-range coordinates rejected", func(t *testing.T) {
		payload := map[string]any{
			"date":  float64(1594382400),
			"lon":   200.0,
			"lat":   47.37,
			"value": 6.53,
		}

		_, err := ParseUVIndex(payload)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("negative date rejected by constructor", func(t *testing.T) {
		payload := map[string]any{
			"date":  float64(-5),
			"lon":   8.55,
			"lat":   47.37,
			"value": 6.53,
		}

		_, err := ParseUVIndex(payload)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestUVIndexToMap(t *testing.T) {
	idx, err := NewUVIndex(testReferenceTime, testLocation(t), 6.53, testReceptionTime)
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
		"value":          6.53,
		"reception_time": testReceptionTime,
	}
	assert.Equal(t, expected, idx.ToMap())
}

func TestUVIndexString(t *testing.T) {
	idx, err := NewUVIndex(testReferenceTime, testLocation(t), 6.53, testReceptionTime)
	require.NoError(t, err)

	s := idx.String()
	assert.Contains(t, s, "2020-07-10 12:00:00+00")
	assert.Contains(t, s, "high")
}
