package destination

import (
	"context"

	"github.com/google/uuid"
)

// DestinationRepository defines the persistence contract for destinations.
type DestinationRepository interface {
	// FindByID retrieves a destination by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Destination, error)

	// FindByOwnerID lists an owner's destinations sorted by name with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Destination, int64, error)

	// Count returns the total number of destinations (admin).
	Count(ctx context.Context) (int64, error)

	// Save persists a new destination.
	Save(ctx context.Context, d *Destination) error

	// Update persists changes to an existing destination.
	Update(ctx context.Context, d *Destination) error

	// Delete removes the destination and every placemark it owns atomically.
	Delete(ctx context.Context, id uuid.UUID) error
}
