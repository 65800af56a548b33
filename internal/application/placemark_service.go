package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	destinationDomain "github.com/mytrips/service-trips/internal/domain/destination"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	"github.com/mytrips/service-trips/pkg/domain"
	"github.com/mytrips/service-trips/pkg/events"
)

// UpdatePlacemarkRequest holds editable placemark details.
type UpdatePlacemarkRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ToggleMembershipRequest names the destination to attach to or detach from.
type ToggleMembershipRequest struct {
	DestinationID uuid.UUID `json:"destination_id" binding:"required"`
}

// PlacemarkStatsDTO holds placemark statistics for the admin dashboard.
type PlacemarkStatsDTO struct {
	TotalPlacemarks   int64            `json:"total_placemarks"`
	ByState           map[string]int64 `json:"by_state"`
	TotalDestinations int64            `json:"total_destinations"`
}

// PlacemarkService orchestrates placemark use cases outside the map session.
type PlacemarkService struct {
	placemarks   placemarkDomain.PlacemarkRepository
	destinations destinationDomain.DestinationRepository
	events       eventEmitter
	logger       *zap.Logger
}

// NewPlacemarkService creates a new PlacemarkService.
func NewPlacemarkService(
	placemarks placemarkDomain.PlacemarkRepository,
	destinations destinationDomain.DestinationRepository,
	producer EventPublisher,
	logger *zap.Logger,
) *PlacemarkService {
	return &PlacemarkService{
		placemarks:   placemarks,
		destinations: destinations,
		events:       eventEmitter{producer: producer, logger: logger},
		logger:       logger,
	}
}

// ListPlacemarks returns the owner's placemarks filtered by state and,
// optionally, by destination.
func (s *PlacemarkService) ListPlacemarks(ctx context.Context, ownerID uuid.UUID, state placemarkDomain.State, destinationID *uuid.UUID) ([]PlacemarkDTO, error) {
	if state == "" {
		state = placemarkDomain.StateAll
	}
	if !state.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid placemark state: %s", state))
	}

	placemarks, err := s.placemarks.Find(ctx, placemarkDomain.Filter{
		OwnerID:       ownerID,
		State:         state,
		DestinationID: destinationID,
	})
	if err != nil {
		return nil, err
	}
	return toPlacemarkDTOs(placemarks), nil
}

// UpdateDetails edits the name and address of one of the owner's placemarks.
// Dropped pins start unnamed and are usually named before being added to a
// destination.
func (s *PlacemarkService) UpdateDetails(ctx context.Context, ownerID, placemarkID uuid.UUID, req UpdatePlacemarkRequest) (*PlacemarkDTO, error) {
	p, err := s.findOwned(ctx, ownerID, placemarkID)
	if err != nil {
		return nil, err
	}
	p.UpdateDetails(req.Name, req.Address)
	if err := s.placemarks.Update(ctx, p); err != nil {
		return nil, err
	}

	result := toPlacemarkDTO(p)
	return &result, nil
}

// ToggleMembership attaches an ephemeral placemark to the destination, or
// detaches an owned one. Detaching never deletes the placemark.
func (s *PlacemarkService) ToggleMembership(ctx context.Context, ownerID, placemarkID, destinationID uuid.UUID) (*PlacemarkDTO, error) {
	p, err := s.findOwned(ctx, ownerID, placemarkID)
	if err != nil {
		return nil, err
	}
	if _, err := findOwnedDestination(ctx, s.destinations, ownerID, destinationID); err != nil {
		return nil, err
	}

	previous := p.DestinationID()
	attached := p.ToggleMembership(destinationID)
	if err := s.placemarks.Update(ctx, p); err != nil {
		return nil, err
	}

	evt := events.PlacemarkMembershipEvent{
		PlacemarkID:   p.ID(),
		DestinationID: destinationID,
		OwnerID:       ownerID,
		OccurredAt:    time.Now().UTC(),
	}
	eventType := events.PlacemarkAttached
	if !attached {
		eventType = events.PlacemarkDetached
		evt.DestinationID = *previous
	}
	s.events.publishEvent(ctx, events.TopicTripEvents, eventType, p.ID().String(), evt)

	s.logger.Debug("placemark membership toggled",
		zap.String("placemark_id", p.ID().String()),
		zap.String("destination_id", evt.DestinationID.String()),
		zap.Bool("attached", attached),
	)

	result := toPlacemarkDTO(p)
	return &result, nil
}

// GetPlacemarkStats returns aggregate placemark statistics (admin).
func (s *PlacemarkService) GetPlacemarkStats(ctx context.Context) (*PlacemarkStatsDTO, error) {
	counts, err := s.placemarks.CountByState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get placemark stats: %w", err)
	}
	destinations, err := s.destinations.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count destinations: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &PlacemarkStatsDTO{
		TotalPlacemarks:   total,
		ByState:           counts,
		TotalDestinations: destinations,
	}, nil
}

func (s *PlacemarkService) findOwned(ctx context.Context, ownerID, placemarkID uuid.UUID) (*placemarkDomain.Placemark, error) {
	p, err := s.placemarks.FindByID(ctx, placemarkID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("placemark does not belong to this user")
	}
	return p, nil
}
