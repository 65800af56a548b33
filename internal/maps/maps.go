package maps

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/internal/domain/route"
)

const (
	// defaultTimeout bounds every outbound maps API call.
	defaultTimeout = 5 * time.Second

	httpMaxIdleConns    = 10
	httpIdleConnTimeout = 30 * time.Second
)

var (
	// ErrUnavailable is returned by the disabled provider and when an API
	// is not configured.
	ErrUnavailable = errors.New("maps: provider unavailable")
	// ErrNoRoute is returned when the directions API finds no route.
	ErrNoRoute = errors.New("maps: no route found")
	// ErrNoScene is returned when no street-level imagery exists nearby.
	ErrNoScene = errors.New("maps: no scene available")
)

// SearchResult is a candidate place returned by a text search.
type SearchResult struct {
	Name       string
	Address    string
	Coordinate geo.Coordinate
}

// Searcher runs free-text place searches, optionally biased to a region.
type Searcher interface {
	Search(ctx context.Context, query string, bias *geo.Region) ([]SearchResult, error)
}

// DirectionsRequest holds the endpoints and mode for a route calculation.
type DirectionsRequest struct {
	Origin geo.Coordinate
	Target geo.Coordinate
	Mode   route.TravelMode
}

// Directions calculates a route between two points.
type Directions interface {
	Route(ctx context.Context, req DirectionsRequest) (*route.Route, error)
}

// Scene is a street-level imagery preview for a coordinate.
type Scene struct {
	PanoID     string         `json:"pano_id"`
	Coordinate geo.Coordinate `json:"coordinate"`
	CapturedAt string         `json:"captured_at,omitempty"`
	ViewerURL  string         `json:"viewer_url"`
	Copyright  string         `json:"copyright,omitempty"`
}

// SceneLookup finds street-level imagery near a coordinate.
type SceneLookup interface {
	Lookup(ctx context.Context, coord geo.Coordinate) (*Scene, error)
}

// Disabled satisfies every maps interface and always fails with
// ErrUnavailable. It is used when no API key is configured.
type Disabled struct{}

func (Disabled) Search(context.Context, string, *geo.Region) ([]SearchResult, error) {
	return nil, ErrUnavailable
}

func (Disabled) Route(context.Context, DirectionsRequest) (*route.Route, error) {
	return nil, ErrUnavailable
}

func (Disabled) Lookup(context.Context, geo.Coordinate) (*Scene, error) {
	return nil, ErrUnavailable
}

// newHTTPClient returns a pooled, traced client shared by the Google clients.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}
