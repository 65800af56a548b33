package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"new york", 40.7128, -74.006, false},
		{"latitude too high", 91, 0, true},
		{"longitude too low", 0, -181, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpan_ValidateRejectsNegative(t *testing.T) {
	assert.NoError(t, Span{}.Validate())
	assert.Error(t, Span{LatitudeDelta: -0.1}.Validate())
	assert.Error(t, Span{LongitudeDelta: -0.1}.Validate())
}

func TestSpan_Swapped(t *testing.T) {
	s := Span{LatitudeDelta: 0.2, LongitudeDelta: 0.1}
	assert.Equal(t, Span{LatitudeDelta: 0.1, LongitudeDelta: 0.2}, s.Swapped())
}

func TestRegion_BoundRoundTrip(t *testing.T) {
	r := Region{
		Center: Coordinate{Latitude: 40, Longitude: -73},
		Span:   Span{LatitudeDelta: 0.2, LongitudeDelta: 0.1},
	}

	back := RegionFromBound(r.Bound())
	assert.InDelta(t, 40, back.Center.Latitude, 1e-9)
	assert.InDelta(t, -73, back.Center.Longitude, 1e-9)
	assert.InDelta(t, 0.2, back.Span.LatitudeDelta, 1e-9)
	assert.InDelta(t, 0.1, back.Span.LongitudeDelta, 1e-9)
}

func TestBoundingRegion(t *testing.T) {
	_, ok := BoundingRegion(nil, 0)
	assert.False(t, ok)

	r, ok := BoundingRegion([]Coordinate{
		{Latitude: 10, Longitude: 20},
		{Latitude: 12, Longitude: 24},
	}, 0)
	require.True(t, ok)
	assert.InDelta(t, 11, r.Center.Latitude, 1e-9)
	assert.InDelta(t, 22, r.Center.Longitude, 1e-9)
	assert.InDelta(t, 2, r.Span.LatitudeDelta, 1e-9)
	assert.InDelta(t, 4, r.Span.LongitudeDelta, 1e-9)

	padded, _ := BoundingRegion([]Coordinate{
		{Latitude: 10, Longitude: 20},
		{Latitude: 12, Longitude: 24},
	}, 0.1)
	assert.Greater(t, padded.Span.LatitudeDelta, r.Span.LatitudeDelta)
}

func TestDistanceMeters(t *testing.T) {
	// One degree of latitude is roughly 111 km.
	d := DistanceMeters(Coordinate{Latitude: 0, Longitude: 0}, Coordinate{Latitude: 1, Longitude: 0})
	assert.InDelta(t, 111_000, d, 1_000)
}
