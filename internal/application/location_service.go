package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/internal/location"
)

// UpdateLocationRequest is a device position report.
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m"`
}

// SetAuthorizationRequest is a device permission change.
type SetAuthorizationRequest struct {
	Status string `json:"status" binding:"required"`
}

// LocationService records device location reports from HTTP and Kafka.
type LocationService struct {
	tracker *location.Tracker
	logger  *zap.Logger
}

// NewLocationService creates a new LocationService.
func NewLocationService(tracker *location.Tracker, logger *zap.Logger) *LocationService {
	return &LocationService{tracker: tracker, logger: logger}
}

// UpdateLocation stores the user's latest position.
func (s *LocationService) UpdateLocation(ctx context.Context, userID uuid.UUID, req UpdateLocationRequest) (*location.Snapshot, error) {
	coord := geo.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := s.tracker.UpdateFix(ctx, userID, coord, req.AccuracyM); err != nil {
		return nil, err
	}
	snap := s.tracker.Snapshot(ctx, userID)
	return &snap, nil
}

// SetAuthorization records a location permission change.
func (s *LocationService) SetAuthorization(ctx context.Context, userID uuid.UUID, req SetAuthorizationRequest) (*location.Snapshot, error) {
	if err := s.tracker.SetAuthorization(ctx, userID, location.Authorization(req.Status)); err != nil {
		return nil, err
	}

	s.logger.Info("location authorization changed",
		zap.String("user_id", userID.String()),
		zap.String("status", req.Status),
	)

	snap := s.tracker.Snapshot(ctx, userID)
	return &snap, nil
}

// GetLocation returns the user's location state.
func (s *LocationService) GetLocation(ctx context.Context, userID uuid.UUID) location.Snapshot {
	return s.tracker.Snapshot(ctx, userID)
}
