//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytrips/service-trips/internal/application"
	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/internal/location"
	"github.com/mytrips/service-trips/internal/repository"
	"github.com/mytrips/service-trips/pkg/events"
	"github.com/mytrips/service-trips/pkg/kafka"
)

// TestDeviceLocation_FeedsMapSession verifies that a location report on
// device.locations reaches the tracker and frames the trip view.
func TestDeviceLocation_FeedsMapSession(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupTripsStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	userID := uuid.New()
	publishTestEvent(t, infra.KafkaBrokers, events.TopicDeviceLocations, "device-gateway",
		events.DeviceLocationUpdated, events.LocationUpdatedEvent{
			UserID: userID, Latitude: 52.52, Longitude: 13.405, AccuracyM: 8,
		})

	require.Eventually(t, func() bool {
		return stack.Tracker.Snapshot(ctx, userID).Known()
	}, 15*time.Second, 200*time.Millisecond, "location update was not consumed")

	session := stack.Sessions.Get(userID)
	require.NoError(t, session.Enter(ctx, nil))
	state, err := session.State(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.Camera)
	assert.Equal(t, 52.52, state.Camera.Center.Latitude)

	publishTestEvent(t, infra.KafkaBrokers, events.TopicDeviceLocations, "device-gateway",
		events.DeviceAuthorizationChanged, events.AuthorizationChangedEvent{UserID: userID, Status: "denied"})

	require.Eventually(t, func() bool {
		return stack.Tracker.Snapshot(ctx, userID).Authorization == location.AuthorizationDenied
	}, 15*time.Second, 200*time.Millisecond, "authorization change was not consumed")
}

// TestDestinationLifecycle_PublishesEventsAndCascades verifies the trip.events
// stream and the postgres cascade when a destination is deleted.
func TestDestinationLifecycle_PublishesEventsAndCascades(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupTripsStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	owner := uuid.New()

	dest, err := stack.Destinations.CreateDestination(ctx, owner, application.CreateDestinationRequest{Name: "Kyoto"})
	require.NoError(t, err)

	pin, err := stack.Sessions.Get(owner).PlaceManualPin(ctx, geo.Coordinate{Latitude: 35.01, Longitude: 135.77})
	require.NoError(t, err)
	_, err = stack.Placemarks.ToggleMembership(ctx, owner, pin.ID, dest.ID)
	require.NoError(t, err)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicTripEvents, events.PlacemarkAttached, 15*time.Second,
		func(ce kafka.CloudEvent) bool {
			var evt events.PlacemarkMembershipEvent
			return ce.ParseData(&evt) == nil && evt.PlacemarkID == pin.ID
		})
	var attached events.PlacemarkMembershipEvent
	require.NoError(t, ce.ParseData(&attached))
	assert.Equal(t, dest.ID, attached.DestinationID)
	assert.Equal(t, owner, attached.OwnerID)

	require.NoError(t, stack.Destinations.DeleteDestination(ctx, owner, dest.ID))

	var count int64
	require.NoError(t, infra.DB.Model(&repository.PlacemarkModel{}).Where("id = ?", pin.ID).Count(&count).Error)
	assert.Zero(t, count, "placemarks are deleted with their destination")

	ce = consumeOneEvent(t, infra.KafkaBrokers, events.TopicTripEvents, events.DestinationDeleted, 15*time.Second,
		func(ce kafka.CloudEvent) bool {
			var evt events.DestinationEvent
			return ce.ParseData(&evt) == nil && evt.DestinationID == dest.ID
		})
	var deleted events.DestinationEvent
	require.NoError(t, ce.ParseData(&deleted))
	assert.Equal(t, "Kyoto", deleted.Name)
}
