package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	destinationDomain "github.com/mytrips/service-trips/internal/domain/destination"
	"github.com/mytrips/service-trips/internal/domain/geo"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	"github.com/mytrips/service-trips/pkg/domain"
	"github.com/mytrips/service-trips/pkg/events"
)

// CreateDestinationRequest holds the data needed to create a destination.
type CreateDestinationRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameDestinationRequest holds the new destination name.
type RenameDestinationRequest struct {
	Name string `json:"name" binding:"required"`
}

// SetRegionRequest carries the captured viewport.
type SetRegionRequest struct {
	Center geo.Coordinate `json:"center"`
	Span   geo.Span       `json:"span"`
}

// DestinationDTO is the response representation of a destination.
type DestinationDTO struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	Region    geo.Region `json:"region"`
	HasRegion bool       `json:"has_region"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DestinationDetailDTO is a destination with the placemarks it owns.
type DestinationDetailDTO struct {
	DestinationDTO
	Placemarks []PlacemarkDTO `json:"placemarks"`
}

// DestinationService orchestrates destination use cases.
type DestinationService struct {
	destinations destinationDomain.DestinationRepository
	placemarks   placemarkDomain.PlacemarkRepository
	axisPolicy   destinationDomain.AxisPolicy
	events       eventEmitter
	logger       *zap.Logger
}

// NewDestinationService creates a new DestinationService.
func NewDestinationService(
	destinations destinationDomain.DestinationRepository,
	placemarks placemarkDomain.PlacemarkRepository,
	axisPolicy destinationDomain.AxisPolicy,
	producer EventPublisher,
	logger *zap.Logger,
) *DestinationService {
	return &DestinationService{
		destinations: destinations,
		placemarks:   placemarks,
		axisPolicy:   axisPolicy,
		events:       eventEmitter{producer: producer, logger: logger},
		logger:       logger,
	}
}

// CreateDestination creates a destination for the owner.
func (s *DestinationService) CreateDestination(ctx context.Context, ownerID uuid.UUID, req CreateDestinationRequest) (*DestinationDTO, error) {
	d, err := destinationDomain.NewDestination(ownerID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.destinations.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save destination: %w", err)
	}

	s.publishDestinationEvent(ctx, events.DestinationCreated, d)

	result := toDestinationDTO(d)
	return &result, nil
}

// ListDestinations returns the owner's destinations sorted by name.
func (s *DestinationService) ListDestinations(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[DestinationDTO], error) {
	destinations, total, err := s.destinations.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]DestinationDTO, len(destinations))
	for i, d := range destinations {
		dtos[i] = toDestinationDTO(d)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetDestination returns a destination with its placemarks.
func (s *DestinationService) GetDestination(ctx context.Context, ownerID, destinationID uuid.UUID) (*DestinationDetailDTO, error) {
	d, err := s.findOwned(ctx, ownerID, destinationID)
	if err != nil {
		return nil, err
	}

	placemarks, err := s.placemarks.FindByDestination(ctx, d.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load destination placemarks: %w", err)
	}

	return &DestinationDetailDTO{
		DestinationDTO: toDestinationDTO(d),
		Placemarks:     toPlacemarkDTOs(placemarks),
	}, nil
}

// RenameDestination replaces the destination name.
func (s *DestinationService) RenameDestination(ctx context.Context, ownerID, destinationID uuid.UUID, req RenameDestinationRequest) (*DestinationDTO, error) {
	d, err := s.findOwned(ctx, ownerID, destinationID)
	if err != nil {
		return nil, err
	}

	if err := d.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.destinations.Update(ctx, d); err != nil {
		return nil, err
	}

	s.publishDestinationEvent(ctx, events.DestinationRenamed, d)

	result := toDestinationDTO(d)
	return &result, nil
}

// DeleteDestination removes the destination together with its placemarks.
func (s *DestinationService) DeleteDestination(ctx context.Context, ownerID, destinationID uuid.UUID) error {
	d, err := s.findOwned(ctx, ownerID, destinationID)
	if err != nil {
		return err
	}

	if err := s.destinations.Delete(ctx, d.ID()); err != nil {
		return err
	}

	s.logger.Info("destination deleted",
		zap.String("destination_id", d.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	s.publishDestinationEvent(ctx, events.DestinationDeleted, d)
	return nil
}

// SetDestinationRegion copies a captured viewport onto the destination using
// the configured axis policy.
func (s *DestinationService) SetDestinationRegion(ctx context.Context, ownerID, destinationID uuid.UUID, req SetRegionRequest) (*DestinationDTO, error) {
	d, err := s.findOwned(ctx, ownerID, destinationID)
	if err != nil {
		return nil, err
	}

	if err := d.SetRegion(req.Center, req.Span, s.axisPolicy); err != nil {
		return nil, err
	}
	if err := s.destinations.Update(ctx, d); err != nil {
		return nil, err
	}

	region := d.Region()
	evt := events.DestinationRegionSetEvent{
		DestinationID:  d.ID(),
		OwnerID:        d.OwnerID(),
		Latitude:       region.Center.Latitude,
		Longitude:      region.Center.Longitude,
		LatitudeDelta:  region.Span.LatitudeDelta,
		LongitudeDelta: region.Span.LongitudeDelta,
		OccurredAt:     time.Now().UTC(),
	}
	s.events.publishEvent(ctx, events.TopicTripEvents, events.DestinationRegionSet, d.ID().String(), evt)

	result := toDestinationDTO(d)
	return &result, nil
}

// CountDestinations returns the number of destinations across all users (admin).
func (s *DestinationService) CountDestinations(ctx context.Context) (int64, error) {
	total, err := s.destinations.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count destinations: %w", err)
	}
	return total, nil
}

func (s *DestinationService) findOwned(ctx context.Context, ownerID, destinationID uuid.UUID) (*destinationDomain.Destination, error) {
	return findOwnedDestination(ctx, s.destinations, ownerID, destinationID)
}

func findOwnedDestination(ctx context.Context, repo destinationDomain.DestinationRepository, ownerID, destinationID uuid.UUID) (*destinationDomain.Destination, error) {
	d, err := repo.FindByID(ctx, destinationID)
	if err != nil {
		return nil, err
	}
	if !d.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("destination does not belong to this user")
	}
	return d, nil
}

func (s *DestinationService) publishDestinationEvent(ctx context.Context, eventType string, d *destinationDomain.Destination) {
	evt := events.DestinationEvent{
		DestinationID: d.ID(),
		OwnerID:       d.OwnerID(),
		Name:          d.Name(),
		OccurredAt:    time.Now().UTC(),
	}
	s.events.publishEvent(ctx, events.TopicTripEvents, eventType, d.ID().String(), evt)
}

func toDestinationDTO(d *destinationDomain.Destination) DestinationDTO {
	return DestinationDTO{
		ID:        d.ID(),
		OwnerID:   d.OwnerID(),
		Name:      d.Name(),
		Region:    d.Region(),
		HasRegion: d.HasRegion(),
		Version:   d.Version(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
}
