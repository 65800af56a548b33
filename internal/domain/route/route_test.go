package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mytrips/service-trips/internal/domain/geo"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusIdle, StatusComputing, true},
		{StatusIdle, StatusDisplayed, false},
		{StatusIdle, StatusReady, false},
		{StatusComputing, StatusReady, true},
		{StatusComputing, StatusIdle, true},
		{StatusComputing, StatusDisplayed, false},
		{StatusReady, StatusDisplayed, true},
		{StatusDisplayed, StatusIdle, true},
		{StatusDisplayed, StatusComputing, true},
		{Status("bogus"), StatusIdle, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsActive(t *testing.T) {
	assert.False(t, StatusIdle.IsActive())
	assert.True(t, StatusComputing.IsActive())
	assert.True(t, StatusReady.IsActive())
	assert.True(t, StatusDisplayed.IsActive())

	assert.False(t, StatusComputing.HasRoute())
	assert.True(t, StatusReady.HasRoute())
}

func TestParseTravelMode(t *testing.T) {
	m, err := ParseTravelMode("walking")
	assert.NoError(t, err)
	assert.Equal(t, ModeWalking, m)
	assert.Equal(t, "Walking", m.Label())
	assert.Equal(t, "Driving", ModeDriving.Label())

	_, err = ParseTravelMode("cycling")
	assert.Error(t, err)
}

func TestFormatTravelTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0m"},
		{20 * time.Second, "0m"},
		{12 * time.Minute, "12m"},
		{time.Hour, "1h"},
		{65 * time.Minute, "1h 5m"},
		{2*time.Hour + 29*time.Minute + 40*time.Second, "2h 30m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTravelTime(tt.in), tt.in.String())
	}
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "500 m", FormatDistance(500))
	assert.Equal(t, "1.2 km", FormatDistance(1234))
}

func TestRoute_BoundsFallsBackToEndpoints(t *testing.T) {
	r := &Route{
		Origin: geo.Coordinate{Latitude: 10, Longitude: 20},
		Target: geo.Coordinate{Latitude: 12, Longitude: 22},
	}
	b := r.Bounds()
	assert.InDelta(t, 11, b.Center.Latitude, 1e-9)
	assert.InDelta(t, 21, b.Center.Longitude, 1e-9)
	assert.Greater(t, b.Span.LatitudeDelta, 2.0)
}
