// Package events defines the Kafka topics, event types and payloads exchanged
// by the trips service.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicTripEvents      = "trip.events"
	TopicDeviceLocations = "device.locations"
)

// Event types published on TopicTripEvents.
const (
	DestinationCreated   = "trip.destination.created"
	DestinationRenamed   = "trip.destination.renamed"
	DestinationDeleted   = "trip.destination.deleted"
	DestinationRegionSet = "trip.destination.region_set"
	PlacemarkAttached    = "trip.placemark.attached"
	PlacemarkDetached    = "trip.placemark.detached"
)

// Event types consumed from TopicDeviceLocations.
const (
	DeviceLocationUpdated      = "device.location.updated"
	DeviceAuthorizationChanged = "device.authorization.changed"
)

// EventSource is the CloudEvents source of everything this service publishes.
const EventSource = "service-trips"

// DestinationEvent is the payload of the destination lifecycle events.
type DestinationEvent struct {
	DestinationID uuid.UUID `json:"destination_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// DestinationRegionSetEvent is published when a destination region is captured.
type DestinationRegionSetEvent struct {
	DestinationID  uuid.UUID `json:"destination_id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	LatitudeDelta  float64   `json:"latitude_delta"`
	LongitudeDelta float64   `json:"longitude_delta"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PlacemarkMembershipEvent is published when a placemark joins or leaves a
// destination.
type PlacemarkMembershipEvent struct {
	PlacemarkID   uuid.UUID `json:"placemark_id"`
	DestinationID uuid.UUID `json:"destination_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LocationUpdatedEvent is a device position report.
type LocationUpdatedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	AccuracyM float64   `json:"accuracy_m"`
}

// AuthorizationChangedEvent is a device location permission change.
type AuthorizationChangedEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Status string    `json:"status"`
}
