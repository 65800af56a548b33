package maps

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/internal/domain/route"
)

var testConfig = GoogleConfig{APIKey: "test-key", Timeout: time.Second}

func TestGooglePlaces_Search(t *testing.T) {
	var got placesSearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, placesFieldMask, r.Header.Get("X-Goog-FieldMask"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"places":[
			{"displayName":{"text":"Blue Bottle"},"formattedAddress":"1 Main St","location":{"latitude":40.01,"longitude":-73.01}},
			{"displayName":{"text":"Stumptown"},"formattedAddress":"2 Main St","location":{"latitude":40.02,"longitude":-73.02}},
			{"displayName":{"text":"Bad"},"formattedAddress":"","location":{"latitude":123,"longitude":0}}
		]}`))
	}))
	defer srv.Close()

	p := NewGooglePlaces(testConfig, zap.NewNop())
	p.apiURL = srv.URL

	bias := &geo.Region{
		Center: geo.Coordinate{Latitude: 40, Longitude: -73},
		Span:   geo.Span{LatitudeDelta: 0.2, LongitudeDelta: 0.1},
	}
	results, err := p.Search(context.Background(), " coffee ", bias)
	require.NoError(t, err)

	assert.Equal(t, "coffee", got.TextQuery)
	require.NotNil(t, got.LocationBias)
	assert.InDelta(t, 39.9, got.LocationBias.Rectangle.Low.Latitude, 1e-9)
	assert.InDelta(t, -73.05, got.LocationBias.Rectangle.Low.Longitude, 1e-9)
	assert.InDelta(t, 40.1, got.LocationBias.Rectangle.High.Latitude, 1e-9)

	require.Len(t, results, 2, "out of range coordinates are dropped")
	assert.Equal(t, "Blue Bottle", results[0].Name)
	assert.Equal(t, "1 Main St", results[0].Address)
}

func TestGooglePlaces_EmptyQueryIsNoop(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	p := NewGooglePlaces(testConfig, zap.NewNop())
	p.apiURL = srv.URL

	results, err := p.Search(context.Background(), "   ", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestGooglePlaces_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewGooglePlaces(testConfig, zap.NewNop())
	p.apiURL = srv.URL

	_, err := p.Search(context.Background(), "coffee", nil)
	assert.ErrorContains(t, err, "status 429")
}

func TestGoogleClients_NoAPIKey(t *testing.T) {
	p := NewGooglePlaces(GoogleConfig{}, zap.NewNop())
	_, err := p.Search(context.Background(), "coffee", nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	r := NewGoogleRoutes(GoogleConfig{}, zap.NewNop())
	_, err = r.Route(context.Background(), DirectionsRequest{Mode: route.ModeDriving})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGoogleRoutes_Route(t *testing.T) {
	var got routesAPIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, routesFieldMask, r.Header.Get("X-Goog-FieldMask"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"routes":[{
			"distanceMeters": 1234,
			"duration": "3900s",
			"polyline": {"encodedPolyline": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"},
			"legs": [{"steps": [
				{"distanceMeters": 200, "navigationInstruction": {"instructions": "Head north"}},
				{"distanceMeters": 1034, "navigationInstruction": {"instructions": "Turn right"}}
			]}]
		}]}`))
	}))
	defer srv.Close()

	c := NewGoogleRoutes(testConfig, zap.NewNop())
	c.apiURL = srv.URL

	req := DirectionsRequest{
		Origin: geo.Coordinate{Latitude: 38.5, Longitude: -120.2},
		Target: geo.Coordinate{Latitude: 43.252, Longitude: -126.453},
		Mode:   route.ModeWalking,
	}
	r, err := c.Route(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "WALK", got.TravelMode)
	assert.Empty(t, got.RoutingPreference, "walking must not send a routing preference")

	assert.Equal(t, route.ModeWalking, r.Mode)
	assert.Equal(t, 65*time.Minute, r.ExpectedTravelTime)
	assert.Equal(t, 1234.0, r.DistanceM)
	require.Len(t, r.Steps, 2)
	assert.Equal(t, "Head north", r.Steps[0].Instruction)
	require.Len(t, r.Path, 3)
	assert.InDelta(t, 38.5, r.Path[0].Latitude, 1e-5)
	assert.InDelta(t, -120.2, r.Path[0].Longitude, 1e-5)
	assert.InDelta(t, 43.252, r.Path[2].Latitude, 1e-5)
}

func TestGoogleRoutes_DrivingSendsTrafficPreference(t *testing.T) {
	var got routesAPIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	c := NewGoogleRoutes(testConfig, zap.NewNop())
	c.apiURL = srv.URL

	_, err := c.Route(context.Background(), DirectionsRequest{Mode: route.ModeDriving})
	assert.ErrorIs(t, err, ErrNoRoute)
	assert.Equal(t, "DRIVE", got.TravelMode)
	assert.Equal(t, "TRAFFIC_AWARE", got.RoutingPreference)
}

func TestGoogleStreetView_Lookup(t *testing.T) {
	status := "OK"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10.000000,20.000000", r.URL.Query().Get("location"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   status,
			"pano_id":  "pano123",
			"date":     "2023-05",
			"location": map[string]float64{"lat": 10.0001, "lng": 20.0001},
		})
	}))
	defer srv.Close()

	s := NewGoogleStreetView(testConfig, zap.NewNop())
	s.apiURL = srv.URL

	scene, err := s.Lookup(context.Background(), geo.Coordinate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)
	assert.Equal(t, "pano123", scene.PanoID)
	assert.Equal(t, "2023-05", scene.CapturedAt)
	assert.Contains(t, scene.ViewerURL, "pano=pano123")
	assert.NotContains(t, scene.ViewerURL, "test-key")

	status = "ZERO_RESULTS"
	_, err = s.Lookup(context.Background(), geo.Coordinate{Latitude: 10, Longitude: 20})
	assert.ErrorIs(t, err, ErrNoScene)
}

func TestDisabled(t *testing.T) {
	var d Disabled
	_, err := d.Search(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = d.Route(context.Background(), DirectionsRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = d.Lookup(context.Background(), geo.Coordinate{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

// countingDirections records how many times Route is called.
type countingDirections struct {
	calls int32
	err   error
}

func (c *countingDirections) Route(_ context.Context, req DirectionsRequest) (*route.Route, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	return &route.Route{Mode: req.Mode, Origin: req.Origin, Target: req.Target, DistanceM: 100}, nil
}

func TestCachedDirections_HitWithinCell(t *testing.T) {
	inner := &countingDirections{}
	c := NewCachedDirections(inner)

	req := DirectionsRequest{
		Origin: geo.Coordinate{Latitude: 40.00001, Longitude: -73.00001},
		Target: geo.Coordinate{Latitude: 40.1, Longitude: -73.1},
		Mode:   route.ModeDriving,
	}
	_, err := c.Route(context.Background(), req)
	require.NoError(t, err)

	// A few meters away lands in the same geohash cell.
	req.Origin = geo.Coordinate{Latitude: 40.00002, Longitude: -73.00002}
	r, err := c.Route(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
	assert.Equal(t, req.Origin, r.Origin, "cached routes carry the caller's endpoints")

	// A different mode is a different key.
	req.Mode = route.ModeWalking
	_, err = c.Route(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestCachedDirections_NearbyTargetsAreDistinct(t *testing.T) {
	inner := &countingDirections{}
	c := NewCachedDirections(inner)
	ctx := context.Background()

	origin := geo.Coordinate{Latitude: 40, Longitude: -73}
	a := geo.Coordinate{Latitude: 40.10010, Longitude: -73.10005}
	b := geo.Coordinate{Latitude: 40.10025, Longitude: -73.10005}
	require.Equal(t, cellHash(a), cellHash(b), "targets share a geohash cell")

	_, err := c.Route(ctx, DirectionsRequest{Origin: origin, Target: a, Mode: route.ModeDriving})
	require.NoError(t, err)
	r, err := c.Route(ctx, DirectionsRequest{Origin: origin, Target: b, Mode: route.ModeDriving})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
	assert.Equal(t, b, r.Target)
	assert.Equal(t, 2, c.Len())
}

func TestCachedDirections_ExpiryAndErrors(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inner := &countingDirections{}
	c := NewCachedDirections(inner, WithCacheTTL(time.Minute), withClock(func() time.Time { return now }))

	req := DirectionsRequest{Mode: route.ModeDriving, Target: geo.Coordinate{Latitude: 1, Longitude: 1}}
	_, _ = c.Route(context.Background(), req)
	now = now.Add(2 * time.Minute)
	_, _ = c.Route(context.Background(), req)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))

	failing := &countingDirections{err: errors.New("boom")}
	fc := NewCachedDirections(failing)
	_, err := fc.Route(context.Background(), req)
	assert.Error(t, err)
	assert.Zero(t, fc.Len(), "failures are not cached")
}

func TestCachedDirections_MaxEntries(t *testing.T) {
	inner := &countingDirections{}
	c := NewCachedDirections(inner, WithMaxEntries(2))

	for i := 0; i < 5; i++ {
		req := DirectionsRequest{Mode: route.ModeDriving, Target: geo.Coordinate{Latitude: float64(i), Longitude: 1}}
		_, err := c.Route(context.Background(), req)
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, c.Len(), 2)
}
