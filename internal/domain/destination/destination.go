package destination

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/pkg/domain"
)

// AxisPolicy controls how a captured viewport span is copied onto a destination.
type AxisPolicy string

const (
	// AxisLikeForLike copies latitude delta to latitude delta.
	AxisLikeForLike AxisPolicy = "like_for_like"
	// AxisSwapped copies latitude delta to longitude delta and vice versa.
	AxisSwapped AxisPolicy = "swapped"
)

// Destination is the aggregate root for a named trip location and its map region.
type Destination struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	name      string
	region    geo.Region
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewDestination creates a destination with a zero region.
func NewDestination(ownerID uuid.UUID, name string) (*Destination, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	trimmed, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Destination{
		id:        uuid.New(),
		ownerID:   ownerID,
		name:      trimmed,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Destination from persistence.
func Reconstruct(id, ownerID uuid.UUID, name string, region geo.Region, version int64, createdAt, updatedAt time.Time) *Destination {
	return &Destination{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		region:    region,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Getters.
func (d *Destination) ID() uuid.UUID        { return d.id }
func (d *Destination) OwnerID() uuid.UUID   { return d.ownerID }
func (d *Destination) Name() string         { return d.name }
func (d *Destination) Region() geo.Region   { return d.region }
func (d *Destination) Version() int64       { return d.version }
func (d *Destination) CreatedAt() time.Time { return d.createdAt }
func (d *Destination) UpdatedAt() time.Time { return d.updatedAt }

// IsOwnedBy checks whether the destination belongs to the given user.
func (d *Destination) IsOwnedBy(ownerID uuid.UUID) bool {
	return d.ownerID == ownerID
}

// HasRegion reports whether a region has been captured.
func (d *Destination) HasRegion() bool {
	return !d.region.Span.IsZero()
}

// Rename replaces the name, applying the same rules as creation.
func (d *Destination) Rename(name string) error {
	trimmed, err := normalizeName(name)
	if err != nil {
		return err
	}
	d.name = trimmed
	d.touch()
	return nil
}

// SetRegion copies a captured viewport onto the destination.
func (d *Destination) SetRegion(center geo.Coordinate, span geo.Span, policy AxisPolicy) error {
	if err := center.Validate(); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if err := span.Validate(); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if policy == AxisSwapped {
		span = span.Swapped()
	}
	d.region = geo.Region{Center: center, Span: span}
	d.touch()
	return nil
}

func (d *Destination) touch() {
	d.version++
	d.updatedAt = time.Now().UTC()
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domain.NewValidationError("destination name is required")
	}
	return trimmed, nil
}

// ParseAxisPolicy converts a config value into an AxisPolicy.
func ParseAxisPolicy(swap bool) AxisPolicy {
	if swap {
		return AxisSwapped
	}
	return AxisLikeForLike
}
