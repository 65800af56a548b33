package placemark

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytrips/service-trips/internal/domain/geo"
)

func newTestPlacemark(t *testing.T) *Placemark {
	t.Helper()
	p, err := NewPlacemark(uuid.New(), "Cafe", "1 Main St", geo.Coordinate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)
	return p
}

func TestNewPlacemark_IsEphemeral(t *testing.T) {
	p, err := NewPlacemark(uuid.New(), "", "", geo.Coordinate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)
	assert.True(t, p.IsEphemeral())
	assert.Nil(t, p.DestinationID())
	assert.Empty(t, p.Name())
	assert.Empty(t, p.Address())
}

func TestNewPlacemark_RejectsInvalidCoordinate(t *testing.T) {
	_, err := NewPlacemark(uuid.New(), "x", "", geo.Coordinate{Latitude: 100})
	assert.Error(t, err)
}

func TestPlacemark_ToggleMembershipRoundTrip(t *testing.T) {
	p := newTestPlacemark(t)
	destID := uuid.New()

	attached := p.ToggleMembership(destID)
	assert.True(t, attached)
	assert.True(t, p.BelongsTo(destID))
	assert.False(t, p.IsEphemeral())

	attached = p.ToggleMembership(destID)
	assert.False(t, attached)
	assert.True(t, p.IsEphemeral())
	assert.False(t, p.BelongsTo(destID))
}

func TestPlacemark_ToggleDetachesFromAnyDestination(t *testing.T) {
	p := newTestPlacemark(t)
	p.AttachTo(uuid.New())

	// An owned placemark is detached even when toggled against another destination.
	attached := p.ToggleMembership(uuid.New())
	assert.False(t, attached)
	assert.True(t, p.IsEphemeral())
}

func TestPlacemark_UpdateDetailsTrims(t *testing.T) {
	p := newTestPlacemark(t)
	p.UpdateDetails("  Bakery ", "\t2 High St  ")
	assert.Equal(t, "Bakery", p.Name())
	assert.Equal(t, "2 High St", p.Address())
}

func TestPlacemark_MapsURL(t *testing.T) {
	p := newTestPlacemark(t)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=10.000000,20.000000", p.MapsURL())
}
