package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mytrips/service-trips/internal/application"
	"github.com/mytrips/service-trips/internal/location"
	"github.com/mytrips/service-trips/pkg/domain"
	"github.com/mytrips/service-trips/pkg/events"
	"github.com/mytrips/service-trips/pkg/kafka"
)

// LocationUpdater is the part of the location service the consumer drives.
type LocationUpdater interface {
	UpdateLocation(ctx context.Context, userID uuid.UUID, req application.UpdateLocationRequest) (*location.Snapshot, error)
	SetAuthorization(ctx context.Context, userID uuid.UUID, req application.SetAuthorizationRequest) (*location.Snapshot, error)
}

// LocationEventConsumer feeds device location reports into the tracker.
type LocationEventConsumer struct {
	consumer *kafka.Consumer
	service  LocationUpdater
	logger   *zap.Logger
}

// NewLocationEventConsumer creates a new LocationEventConsumer.
func NewLocationEventConsumer(
	brokers []string,
	groupID string,
	service LocationUpdater,
	logger *zap.Logger,
) *LocationEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicDeviceLocations, logger)
	return &LocationEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming device events. This blocks until the context is cancelled.
func (c *LocationEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *LocationEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *LocationEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from device topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.DeviceLocationUpdated:
		return c.handleLocationUpdated(ctx, cloudEvent)
	case events.DeviceAuthorizationChanged:
		return c.handleAuthorizationChanged(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled device event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *LocationEventConsumer) handleLocationUpdated(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.LocationUpdatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse LocationUpdatedEvent data", zap.Error(err))
		return nil
	}
	if evt.UserID == uuid.Nil {
		c.logger.Warn("dropping device event without user_id", zap.String("event_id", cloudEvent.ID))
		return nil
	}

	_, err := c.service.UpdateLocation(ctx, evt.UserID, application.UpdateLocationRequest{
		Latitude:  evt.Latitude,
		Longitude: evt.Longitude,
		AccuracyM: evt.AccuracyM,
	})
	return c.settle(err, "location update", evt.UserID)
}

func (c *LocationEventConsumer) handleAuthorizationChanged(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.AuthorizationChangedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse AuthorizationChangedEvent data", zap.Error(err))
		return nil
	}
	if evt.UserID == uuid.Nil {
		c.logger.Warn("dropping device event without user_id", zap.String("event_id", cloudEvent.ID))
		return nil
	}

	_, err := c.service.SetAuthorization(ctx, evt.UserID, application.SetAuthorizationRequest{Status: evt.Status})
	return c.settle(err, "authorization change", evt.UserID)
}

// settle drops events the domain rejects and returns anything else so the
// offset is left uncommitted.
func (c *LocationEventConsumer) settle(err error, what string, userID uuid.UUID) error {
	if err == nil {
		return nil
	}

	var (
		validation *domain.ValidationError
		forbidden  *domain.ForbiddenError
	)
	if errors.As(err, &validation) || errors.As(err, &forbidden) {
		c.logger.Warn("dropping rejected device event",
			zap.String("event", what),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil
	}

	c.logger.Error("failed to apply device event",
		zap.String("event", what),
		zap.String("user_id", userID.String()),
		zap.Error(err),
	)
	return err
}
