package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	destinationDomain "github.com/mytrips/service-trips/internal/domain/destination"
	"github.com/mytrips/service-trips/internal/domain/geo"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	"github.com/mytrips/service-trips/pkg/database"
	"github.com/mytrips/service-trips/pkg/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func newTestPlacemark(t *testing.T, owner uuid.UUID, name string) *placemarkDomain.Placemark {
	t.Helper()
	p, err := placemarkDomain.NewPlacemark(owner, name, "", geo.Coordinate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)
	return p
}

func TestDestinationRepository_SaveFindUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormDestinationRepository(setupDB(t))
	owner := uuid.New()

	d, err := destinationDomain.NewDestination(owner, "Lisbon")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, d))

	require.NoError(t, d.SetRegion(geo.Coordinate{Latitude: 38.7, Longitude: -9.1}, geo.Span{LatitudeDelta: 0.2, LongitudeDelta: 0.1}, destinationDomain.AxisLikeForLike))
	require.NoError(t, repo.Update(ctx, d))

	got, err := repo.FindByID(ctx, d.ID())
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.Name())
	assert.Equal(t, int64(2), got.Version())
	assert.InDelta(t, 0.2, got.Region().Span.LatitudeDelta, 1e-9)
	assert.InDelta(t, 0.1, got.Region().Span.LongitudeDelta, 1e-9)

	// A second writer holding the stale version loses.
	stale := destinationDomain.Reconstruct(d.ID(), owner, "Porto", d.Region(), 2, d.CreatedAt(), d.UpdatedAt())
	var conflict *domain.ConflictError
	assert.ErrorAs(t, repo.Update(ctx, stale), &conflict)

	_, err = repo.FindByID(ctx, uuid.New())
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDestinationRepository_FindByOwnerIDSortedByName(t *testing.T) {
	ctx := context.Background()
	repo := NewGormDestinationRepository(setupDB(t))
	owner := uuid.New()

	for _, name := range []string{"Rome", "Athens", "Oslo"} {
		d, err := destinationDomain.NewDestination(owner, name)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, d))
	}
	other, _ := destinationDomain.NewDestination(uuid.New(), "Berlin")
	require.NoError(t, repo.Save(ctx, other))

	page1, total, err := repo.FindByOwnerID(ctx, owner, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page1, 2)
	assert.Equal(t, "Athens", page1[0].Name())
	assert.Equal(t, "Oslo", page1[1].Name())

	page2, _, err := repo.FindByOwnerID(ctx, owner, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "Rome", page2[0].Name())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestDestinationRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	destinations := NewGormDestinationRepository(db)
	placemarks := NewGormPlacemarkRepository(db)
	owner := uuid.New()

	d, _ := destinationDomain.NewDestination(owner, "Kyoto")
	require.NoError(t, destinations.Save(ctx, d))

	owned := newTestPlacemark(t, owner, "Temple")
	owned.AttachTo(d.ID())
	loose := newTestPlacemark(t, owner, "Cafe")
	require.NoError(t, placemarks.SaveAll(ctx, []*placemarkDomain.Placemark{owned, loose}))

	require.NoError(t, destinations.Delete(ctx, d.ID()))

	_, err := placemarks.FindByID(ctx, owned.ID())
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	_, err = placemarks.FindByID(ctx, loose.ID())
	assert.NoError(t, err, "placemarks of other destinations survive")

	assert.ErrorAs(t, destinations.Delete(ctx, d.ID()), &notFound)
}

func TestPlacemarkRepository_FindByState(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPlacemarkRepository(setupDB(t))
	owner := uuid.New()
	destID := uuid.New()

	owned := newTestPlacemark(t, owner, "Owned")
	owned.AttachTo(destID)
	ephemeral := newTestPlacemark(t, owner, "Ephemeral")
	foreign := newTestPlacemark(t, uuid.New(), "Foreign")
	require.NoError(t, repo.SaveAll(ctx, []*placemarkDomain.Placemark{owned, ephemeral, foreign}))

	all, err := repo.Find(ctx, placemarkDomain.Filter{OwnerID: owner, State: placemarkDomain.StateAll})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	eph, err := repo.Find(ctx, placemarkDomain.Filter{OwnerID: owner, State: placemarkDomain.StateEphemeral})
	require.NoError(t, err)
	require.Len(t, eph, 1)
	assert.Equal(t, ephemeral.ID(), eph[0].ID())

	byDest, err := repo.Find(ctx, placemarkDomain.Filter{OwnerID: owner, DestinationID: &destID})
	require.NoError(t, err)
	require.Len(t, byDest, 1)
	assert.Equal(t, owned.ID(), byDest[0].ID())

	listed, err := repo.FindByDestination(ctx, destID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].BelongsTo(destID))
}

func TestPlacemarkRepository_UpdateMembership(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPlacemarkRepository(setupDB(t))
	owner := uuid.New()
	destID := uuid.New()

	p := newTestPlacemark(t, owner, "")
	require.NoError(t, repo.Save(ctx, p))

	p.AttachTo(destID)
	p.UpdateDetails("  Museum ", " 1 Road ")
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "Museum", got.Name())
	assert.Equal(t, "1 Road", got.Address())
	assert.True(t, got.BelongsTo(destID))

	got.Detach()
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, again.IsEphemeral())
}

func TestPlacemarkRepository_DeleteEphemeralIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPlacemarkRepository(setupDB(t))
	owner := uuid.New()

	owned := newTestPlacemark(t, owner, "Owned")
	owned.AttachTo(uuid.New())
	require.NoError(t, repo.SaveAll(ctx, []*placemarkDomain.Placemark{
		owned,
		newTestPlacemark(t, owner, "a"),
		newTestPlacemark(t, owner, "b"),
		newTestPlacemark(t, uuid.New(), "other user"),
	}))

	n, err := repo.DeleteEphemeral(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteEphemeral(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, n)

	counts, err := repo.CountByState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["owned"])
	assert.Equal(t, int64(1), counts["ephemeral"])
}
