package maps

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/mytrips/service-trips/internal/domain/geo"
)

const (
	streetViewMetadataURL = "https://maps.googleapis.com/maps/api/streetview/metadata"
	panoViewerURL         = "https://www.google.com/maps/@"
	// streetViewRadiusM is how far from the coordinate to look for a panorama.
	streetViewRadiusM = 50
)

// GoogleStreetView implements SceneLookup using Street View image metadata.
// Metadata requests are not billed and return whether imagery exists.
type GoogleStreetView struct {
	googleClient
	apiURL string
}

// NewGoogleStreetView creates a SceneLookup backed by Street View metadata.
func NewGoogleStreetView(cfg GoogleConfig, logger *zap.Logger) *GoogleStreetView {
	return &GoogleStreetView{
		googleClient: newGoogleClient(cfg, logger),
		apiURL:       streetViewMetadataURL,
	}
}

// Lookup returns the nearest outdoor panorama, or ErrNoScene.
func (g *GoogleStreetView) Lookup(ctx context.Context, coord geo.Coordinate) (*Scene, error) {
	q := url.Values{}
	q.Set("location", formatLatLng(coord))
	q.Set("radius", strconv.Itoa(streetViewRadiusM))
	q.Set("source", "outdoor")
	q.Set("key", g.apiKey)

	var resp streetViewMetadata
	if err := g.get(ctx, g.apiURL+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("maps: streetview: %w", err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, ErrNoScene
	default:
		return nil, fmt.Errorf("maps: streetview: status %s", resp.Status)
	}

	viewer := url.Values{}
	viewer.Set("api", "1")
	viewer.Set("map_action", "pano")
	viewer.Set("pano", resp.PanoID)

	return &Scene{
		PanoID:     resp.PanoID,
		Coordinate: geo.Coordinate{Latitude: resp.Location.Lat, Longitude: resp.Location.Lng},
		CapturedAt: resp.Date,
		ViewerURL:  panoViewerURL + "?" + viewer.Encode(),
		Copyright:  resp.Copyright,
	}, nil
}

func formatLatLng(c geo.Coordinate) string {
	return strconv.FormatFloat(c.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', 6, 64)
}

type streetViewMetadata struct {
	Status    string `json:"status"`
	PanoID    string `json:"pano_id"`
	Date      string `json:"date"`
	Copyright string `json:"copyright"`
	Location  struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}
