package placemark

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows a placemark listing.
type Filter struct {
	OwnerID       uuid.UUID
	State         State
	DestinationID *uuid.UUID
}

// PlacemarkRepository defines the persistence contract for placemarks.
type PlacemarkRepository interface {
	// Save persists a new placemark.
	Save(ctx context.Context, p *Placemark) error

	// SaveAll persists a batch of new placemarks atomically.
	SaveAll(ctx context.Context, ps []*Placemark) error

	// Update persists name, address and membership changes.
	Update(ctx context.Context, p *Placemark) error

	// FindByID retrieves a placemark by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Placemark, error)

	// Find lists placemarks matching the filter, oldest first.
	Find(ctx context.Context, filter Filter) ([]*Placemark, error)

	// FindByDestination lists the placemarks owned by a destination.
	FindByDestination(ctx context.Context, destinationID uuid.UUID) ([]*Placemark, error)

	// DeleteEphemeral removes every placemark of the owner that has no
	// destination and returns how many were removed.
	DeleteEphemeral(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// CountByState returns placemark counts keyed by "owned" and "ephemeral" (admin).
	CountByState(ctx context.Context) (map[string]int64, error)
}
