package region

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCities = []types.City{
	{Name: "Sydney", Code: "SYD", Timezone: "Australia/Sydney", StartHourUTC: 22, EndHourUTC: 31},
	{Name: "London", Code: "LON", Timezone: "Europe/London", StartHourUTC: 8, EndHourUTC: 17},
	{Name: "New York", Code: "NYC", Timezone: "America/New_York", StartHourUTC: 13, EndHourUTC: 22},
}

func TestUTCHour(t *testing.T) {
	ts := time.Date(2026, 3, 4, 13, 30, 36, 0, time.UTC)
	assert.InDelta(t, 13.51, UTCHour(ts), 1e-9)

	// Non-UTC input is converted first
	ny := time.FixedZone("EST", -5*3600)
	assert.InDelta(t, 18.0, UTCHour(time.Date(2026, 3, 4, 13, 0, 0, 0, ny)), 1e-9)
}

func TestActiveMidnightSpan(t *testing.T) {
	w := types.City{StartHourUTC: 16, EndHourUTC: 25}

	assert.True(t, Active(w, 0.5))
	assert.True(t, Active(w, 23.9))
	assert.True(t, Active(w, 16))
	assert.False(t, Active(w, 15.9))
	assert.False(t, Active(w, 1))
}

func TestActiveHalfOpen(t *testing.T) {
	w := types.City{StartHourUTC: 8, EndHourUTC: 17}

	assert.True(t, Active(w, 8))
	assert.True(t, Active(w, 16.99))
	assert.False(t, Active(w, 17))
	assert.False(t, Active(w, 7.99))
}

func TestCurrentCity(t *testing.T) {
	tests := []struct {
		name string
		now  float64
		want string
	}{
		{"london only", 9, "London"},
		{"overlap prefers later start", 14, "New York"},
		{"sydney across midnight", 23, "Sydney"},
		{"sydney after midnight", 3, "Sydney"},
		{"sydney opens at 22", 22, "Sydney"},
		{"gap falls back to sydney", 7.5, "Sydney"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CurrentCity(testCities, tt.now)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestCurrentCityFallbackWraps(t *testing.T) {
	cities := []types.City{
		{Name: "A", StartHourUTC: 10, EndHourUTC: 12},
		{Name: "B", StartHourUTC: 20, EndHourUTC: 21},
	}

	// 05:00 is before both starts; B started most recently (yesterday 20:00)
	got, ok := CurrentCity(cities, 5)
	require.True(t, ok)
	assert.Equal(t, "B", got.Name)

	got, _ = CurrentCity(cities, 15)
	assert.Equal(t, "A", got.Name)
}

func TestCurrentCityTotal(t *testing.T) {
	_, ok := CurrentCity(nil, 3)
	assert.False(t, ok)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := 1 + r.Intn(5)
		cities := make([]types.City, n)
		for j := range cities {
			start := float64(r.Intn(24))
			cities[j] = types.City{Name: string(rune('A' + j)), StartHourUTC: start, EndHourUTC: start + 1 + float64(r.Intn(12))}
		}
		now := r.Float64() * 24
		got, ok := CurrentCity(cities, now)
		require.True(t, ok)
		assert.NotEmpty(t, got.Name)
	}
}

func TestIncomingCity(t *testing.T) {
	got, ok := IncomingCity(testCities, 9)
	require.True(t, ok)
	assert.Equal(t, "New York", got.Name)

	got, _ = IncomingCity(testCities, 14)
	assert.Equal(t, "Sydney", got.Name)

	// Nothing left today: wrap to the earliest start
	got, _ = IncomingCity(testCities, 22.5)
	assert.Equal(t, "London", got.Name)

	_, ok = IncomingCity(nil, 1)
	assert.False(t, ok)
}

func TestHandoffs(t *testing.T) {
	cities := []types.City{
		{Name: "London", StartHourUTC: 8, EndHourUTC: 17},
		{Name: "New York", StartHourUTC: 13, EndHourUTC: 22},
		{Name: "Sydney", StartHourUTC: 21, EndHourUTC: 30},
		{Name: "Tokyo", StartHourUTC: 0, EndHourUTC: 9},
	}

	bands := Handoffs(cities)
	require.Len(t, bands, 4)

	assert.Equal(t, types.HandoffBand{From: "Sydney", To: "Tokyo", StartHourUTC: 0, EndHourUTC: 6}, bands[0])
	assert.Equal(t, types.HandoffBand{From: "Tokyo", To: "London", StartHourUTC: 8, EndHourUTC: 9}, bands[1])
	assert.Equal(t, types.HandoffBand{From: "London", To: "New York", StartHourUTC: 13, EndHourUTC: 17}, bands[2])
	assert.Equal(t, types.HandoffBand{From: "New York", To: "Sydney", StartHourUTC: 21, EndHourUTC: 22}, bands[3])
}

func TestCursor(t *testing.T) {
	assert.Equal(t, 0.0, Cursor(0))
	assert.Equal(t, 50.0, Cursor(12))
	assert.InDelta(t, 25.0, Cursor(30), 1e-9)
}
