package maps

import (
	"context"
	"fmt"
	"time"

	polyline "github.com/twpayne/go-polyline"
	"go.uber.org/zap"

	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/internal/domain/route"
)

const (
	// routesAPIURL is the Google Routes API v2 endpoint.
	routesAPIURL = "https://routes.googleapis.com/directions/v2:computeRoutes"

	routesFieldMask = "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline," +
		"routes.legs.steps.distanceMeters,routes.legs.steps.navigationInstruction.instructions"
)

// GoogleRoutes implements Directions using the Google Routes API v2.
type GoogleRoutes struct {
	googleClient
	// apiURL is overridable in tests.
	apiURL string
}

// NewGoogleRoutes creates a Directions client backed by the Routes API.
func NewGoogleRoutes(cfg GoogleConfig, logger *zap.Logger) *GoogleRoutes {
	return &GoogleRoutes{
		googleClient: newGoogleClient(cfg, logger),
		apiURL:       routesAPIURL,
	}
}

// Route calls the Routes API and returns the primary route with its steps.
func (g *GoogleRoutes) Route(ctx context.Context, req DirectionsRequest) (*route.Route, error) {
	body := routesAPIRequest{
		Origin:       waypoint(req.Origin),
		Destination:  waypoint(req.Target),
		TravelMode:   travelModeParam(req.Mode),
		LanguageCode: g.languageCode,
		Units:        "METRIC",
	}
	// Routing preference is only accepted for driving.
	if req.Mode != route.ModeWalking {
		body.RoutingPreference = "TRAFFIC_AWARE"
	}

	var resp routesAPIResponse
	if err := g.postJSON(ctx, g.apiURL, routesFieldMask, body, &resp); err != nil {
		return nil, fmt.Errorf("maps: routes: %w", err)
	}
	if len(resp.Routes) == 0 {
		return nil, ErrNoRoute
	}

	primary := resp.Routes[0]

	// Google returns durations such as "123s".
	duration, err := time.ParseDuration(primary.Duration)
	if err != nil {
		return nil, fmt.Errorf("maps: routes: parse duration %q: %w", primary.Duration, err)
	}

	path, err := decodePath(primary.Polyline.EncodedPolyline)
	if err != nil {
		return nil, fmt.Errorf("maps: routes: %w", err)
	}

	var steps []route.Step
	for _, leg := range primary.Legs {
		for _, s := range leg.Steps {
			steps = append(steps, route.Step{
				Instruction: s.NavigationInstruction.Instructions,
				DistanceM:   float64(s.DistanceMeters),
			})
		}
	}

	return &route.Route{
		Mode:               req.Mode,
		Origin:             req.Origin,
		Target:             req.Target,
		Steps:              steps,
		Polyline:           primary.Polyline.EncodedPolyline,
		Path:               path,
		DistanceM:          float64(primary.DistanceMeters),
		ExpectedTravelTime: duration,
	}, nil
}

func decodePath(encoded string) ([]geo.Coordinate, error) {
	if encoded == "" {
		return nil, nil
	}
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	path := make([]geo.Coordinate, len(coords))
	for i, c := range coords {
		path[i] = geo.Coordinate{Latitude: c[0], Longitude: c[1]}
	}
	return path, nil
}

func travelModeParam(m route.TravelMode) string {
	if m == route.ModeWalking {
		return "WALK"
	}
	return "DRIVE"
}

func waypoint(c geo.Coordinate) routesAPIWaypoint {
	return routesAPIWaypoint{
		Location: routesAPILocation{
			LatLng: googleLatLng{Latitude: c.Latitude, Longitude: c.Longitude},
		},
	}
}

// --- JSON types for the Google Routes API v2 ---

type routesAPIRequest struct {
	Origin            routesAPIWaypoint `json:"origin"`
	Destination       routesAPIWaypoint `json:"destination"`
	TravelMode        string            `json:"travelMode"`
	RoutingPreference string            `json:"routingPreference,omitempty"`
	LanguageCode      string            `json:"languageCode"`
	Units             string            `json:"units"`
}

type routesAPIWaypoint struct {
	Location routesAPILocation `json:"location"`
}

type routesAPILocation struct {
	LatLng googleLatLng `json:"latLng"`
}

type routesAPIResponse struct {
	Routes []routesAPIRoute `json:"routes"`
}

type routesAPIRoute struct {
	DistanceMeters int               `json:"distanceMeters"`
	Duration       string            `json:"duration"`
	Polyline       routesAPIPolyline `json:"polyline"`
	Legs           []routesAPILeg    `json:"legs"`
}

type routesAPIPolyline struct {
	EncodedPolyline string `json:"encodedPolyline"`
}

type routesAPILeg struct {
	Steps []routesAPIStep `json:"steps"`
}

type routesAPIStep struct {
	DistanceMeters        int                            `json:"distanceMeters"`
	NavigationInstruction routesAPINavigationInstruction `json:"navigationInstruction"`
}

type routesAPINavigationInstruction struct {
	Maneuver     string `json:"maneuver"`
	Instructions string `json:"instructions"`
}
