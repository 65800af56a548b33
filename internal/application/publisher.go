package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mytrips/service-trips/internal/domain/geo"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	"github.com/mytrips/service-trips/pkg/events"
	"github.com/mytrips/service-trips/pkg/kafka"
)

// EventPublisher writes CloudEvents to a topic. *kafka.Producer satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// eventEmitter publishes trip events best-effort. Failures are logged and
// never fail the calling use case.
type eventEmitter struct {
	producer EventPublisher
	logger   *zap.Logger
}

func (e eventEmitter) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if e.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, data)
	if err != nil {
		e.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := e.producer.Publish(ctx, topic, key, cloudEvent); err != nil {
		e.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// PlacemarkDTO is the API representation of a placemark.
type PlacemarkDTO struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Address       string         `json:"address"`
	Coordinate    geo.Coordinate `json:"coordinate"`
	DestinationID *uuid.UUID     `json:"destination_id,omitempty"`
	Ephemeral     bool           `json:"ephemeral"`
	MapsURL       string         `json:"maps_url"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func toPlacemarkDTO(p *placemarkDomain.Placemark) PlacemarkDTO {
	return PlacemarkDTO{
		ID:            p.ID(),
		Name:          p.Name(),
		Address:       p.Address(),
		Coordinate:    p.Coordinate(),
		DestinationID: p.DestinationID(),
		Ephemeral:     p.IsEphemeral(),
		MapsURL:       p.MapsURL(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toPlacemarkDTOs(ps []*placemarkDomain.Placemark) []PlacemarkDTO {
	dtos := make([]PlacemarkDTO, len(ps))
	for i, p := range ps {
		dtos[i] = toPlacemarkDTO(p)
	}
	return dtos
}
