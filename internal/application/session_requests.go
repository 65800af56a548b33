package application

import (
	"github.com/google/uuid"

	"github.com/mytrips/service-trips/internal/domain/geo"
)

// EnterViewRequest opens the trip view, or a destination view when
// DestinationID is set.
type EnterViewRequest struct {
	DestinationID *uuid.UUID `json:"destination_id"`
}

// SearchRequest is a free-text place search. Region biases the results and
// defaults to the visible region.
type SearchRequest struct {
	Query  string      `json:"query"`
	Region *geo.Region `json:"region"`
}

// PlacePinRequest drops a pin at a coordinate.
type PlacePinRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SelectPlacemarkRequest selects a placemark on the map.
type SelectPlacemarkRequest struct {
	PlacemarkID uuid.UUID `json:"placemark_id" binding:"required"`
}

// TravelModeRequest changes the routing travel mode.
type TravelModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// ManualPinModeRequest toggles manual pin placement.
type ManualPinModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SearchResultsDTO lists the placemarks a search created.
type SearchResultsDTO struct {
	Results []PlacemarkDTO `json:"results"`
}

// ClearResultsDTO reports how many ephemeral placemarks were removed.
type ClearResultsDTO struct {
	Removed int64 `json:"removed"`
}
