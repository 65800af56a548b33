package placemark

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/pkg/domain"
)

// State filters placemarks by whether they belong to a destination.
type State string

const (
	StateAll       State = "all"
	StateEphemeral State = "ephemeral"
	StateOwned     State = "owned"
)

// IsValid returns true if the state is recognized.
func (s State) IsValid() bool {
	return s == StateAll || s == StateEphemeral || s == StateOwned
}

// Placemark is a named geographic point, optionally owned by a destination.
// A placemark without a destination is an ephemeral search result or dropped pin.
type Placemark struct {
	id            uuid.UUID
	ownerID       uuid.UUID
	name          string
	address       string
	coordinate    geo.Coordinate
	destinationID *uuid.UUID
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPlacemark creates an ephemeral placemark. Name and address may be empty.
func NewPlacemark(ownerID uuid.UUID, name, address string, coord geo.Coordinate) (*Placemark, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if err := coord.Validate(); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid coordinate: %v", err))
	}

	now := time.Now().UTC()
	return &Placemark{
		id:         uuid.New(),
		ownerID:    ownerID,
		name:       name,
		address:    address,
		coordinate: coord,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Placemark from persistence.
func Reconstruct(id, ownerID uuid.UUID, name, address string, coord geo.Coordinate, destinationID *uuid.UUID, createdAt, updatedAt time.Time) *Placemark {
	return &Placemark{
		id:            id,
		ownerID:       ownerID,
		name:          name,
		address:       address,
		coordinate:    coord,
		destinationID: destinationID,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Getters.
func (p *Placemark) ID() uuid.UUID              { return p.id }
func (p *Placemark) OwnerID() uuid.UUID         { return p.ownerID }
func (p *Placemark) Name() string               { return p.name }
func (p *Placemark) Address() string            { return p.address }
func (p *Placemark) Coordinate() geo.Coordinate { return p.coordinate }
func (p *Placemark) DestinationID() *uuid.UUID  { return p.destinationID }
func (p *Placemark) CreatedAt() time.Time       { return p.createdAt }
func (p *Placemark) UpdatedAt() time.Time       { return p.updatedAt }

// IsOwnedBy checks whether the placemark belongs to the given user.
func (p *Placemark) IsOwnedBy(ownerID uuid.UUID) bool {
	return p.ownerID == ownerID
}

// IsEphemeral reports whether the placemark has no destination.
func (p *Placemark) IsEphemeral() bool {
	return p.destinationID == nil
}

// BelongsTo reports whether the placemark is owned by the given destination.
func (p *Placemark) BelongsTo(destinationID uuid.UUID) bool {
	return p.destinationID != nil && *p.destinationID == destinationID
}

// AttachTo makes the placemark a member of the destination.
func (p *Placemark) AttachTo(destinationID uuid.UUID) {
	id := destinationID
	p.destinationID = &id
	p.updatedAt = time.Now().UTC()
}

// Detach clears the destination. The placemark becomes ephemeral again and
// is not deleted.
func (p *Placemark) Detach() {
	p.destinationID = nil
	p.updatedAt = time.Now().UTC()
}

// ToggleMembership attaches an ephemeral placemark to the destination, or
// detaches an owned one. It returns true if the placemark is now attached.
func (p *Placemark) ToggleMembership(destinationID uuid.UUID) bool {
	if p.IsEphemeral() {
		p.AttachTo(destinationID)
		return true
	}
	p.Detach()
	return false
}

// UpdateDetails replaces the name and address, trimming surrounding whitespace.
func (p *Placemark) UpdateDetails(name, address string) {
	p.name = strings.TrimSpace(name)
	p.address = strings.TrimSpace(address)
	p.updatedAt = time.Now().UTC()
}

// MapsURL returns a link that opens the placemark in a maps application.
func (p *Placemark) MapsURL() string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f",
		p.coordinate.Latitude, p.coordinate.Longitude)
}
