package maps

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mytrips/service-trips/internal/domain/geo"
)

const (
	placesSearchURL      = "https://places.googleapis.com/v1/places:searchText"
	placesFieldMask      = "places.displayName,places.formattedAddress,places.location"
	placesMaxResultCount = 20
)

// GooglePlaces implements Searcher with the Places API Text Search.
type GooglePlaces struct {
	googleClient
	// apiURL is overridable in tests.
	apiURL string
}

// NewGooglePlaces creates a Searcher backed by the Places API.
func NewGooglePlaces(cfg GoogleConfig, logger *zap.Logger) *GooglePlaces {
	return &GooglePlaces{
		googleClient: newGoogleClient(cfg, logger),
		apiURL:       placesSearchURL,
	}
}

// Search runs a text query. When bias is set, results are biased toward the
// region's rectangle.
func (g *GooglePlaces) Search(ctx context.Context, query string, bias *geo.Region) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	body := placesSearchRequest{
		TextQuery:      query,
		LanguageCode:   g.languageCode,
		MaxResultCount: placesMaxResultCount,
	}
	if bias != nil && !bias.Span.IsZero() {
		b := bias.Bound()
		body.LocationBias = &placesLocationBias{
			Rectangle: placesRectangle{
				Low:  googleLatLng{Latitude: b.Bottom(), Longitude: b.Left()},
				High: googleLatLng{Latitude: b.Top(), Longitude: b.Right()},
			},
		}
	}

	var resp placesSearchResponse
	if err := g.postJSON(ctx, g.apiURL, placesFieldMask, body, &resp); err != nil {
		return nil, fmt.Errorf("maps: places: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Places))
	for _, p := range resp.Places {
		coord := geo.Coordinate{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude}
		if err := coord.Validate(); err != nil {
			continue
		}
		results = append(results, SearchResult{
			Name:       p.DisplayName.Text,
			Address:    p.FormattedAddress,
			Coordinate: coord,
		})
	}
	return results, nil
}

// --- JSON types for the Places API (New) ---

type placesSearchRequest struct {
	TextQuery      string              `json:"textQuery"`
	LanguageCode   string              `json:"languageCode,omitempty"`
	MaxResultCount int                 `json:"maxResultCount,omitempty"`
	LocationBias   *placesLocationBias `json:"locationBias,omitempty"`
}

type placesLocationBias struct {
	Rectangle placesRectangle `json:"rectangle"`
}

type placesRectangle struct {
	Low  googleLatLng `json:"low"`
	High googleLatLng `json:"high"`
}

type placesSearchResponse struct {
	Places []placesPlace `json:"places"`
}

type placesPlace struct {
	DisplayName      placesLocalizedText `json:"displayName"`
	FormattedAddress string              `json:"formattedAddress"`
	Location         googleLatLng        `json:"location"`
}

type placesLocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}
