package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mytrips/service-trips/internal/domain/geo"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	"github.com/mytrips/service-trips/pkg/domain"
)

// PlacemarkModel is the GORM model for the placemarks table.
type PlacemarkModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	DestinationID *uuid.UUID `gorm:"type:uuid;index"`
	Name          string     `gorm:"type:text;not null;default:''"`
	Address       string     `gorm:"type:text;not null;default:''"`
	Latitude      float64    `gorm:"not null"`
	Longitude     float64    `gorm:"not null"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName sets the table name.
func (PlacemarkModel) TableName() string { return "placemarks" }

// GormPlacemarkRepository implements PlacemarkRepository using GORM.
type GormPlacemarkRepository struct {
	db *gorm.DB
}

// NewGormPlacemarkRepository creates a new GormPlacemarkRepository.
func NewGormPlacemarkRepository(db *gorm.DB) *GormPlacemarkRepository {
	return &GormPlacemarkRepository{db: db}
}

// Save persists a new placemark.
func (r *GormPlacemarkRepository) Save(ctx context.Context, p *placemarkDomain.Placemark) error {
	model := toPlacemarkModel(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save placemark: %w", err)
	}
	return nil
}

// SaveAll persists a batch of placemarks in one insert.
func (r *GormPlacemarkRepository) SaveAll(ctx context.Context, ps []*placemarkDomain.Placemark) error {
	if len(ps) == 0 {
		return nil
	}
	models := make([]PlacemarkModel, len(ps))
	for i, p := range ps {
		models[i] = toPlacemarkModel(p)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("failed to save placemarks: %w", err)
	}
	return nil
}

// Update persists name, address and membership changes.
func (r *GormPlacemarkRepository) Update(ctx context.Context, p *placemarkDomain.Placemark) error {
	model := toPlacemarkModel(p)
	result := r.db.WithContext(ctx).
		Model(&PlacemarkModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":           model.Name,
			"address":        model.Address,
			"destination_id": model.DestinationID,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update placemark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Placemark", model.ID.String())
	}
	return nil
}

// FindByID returns a single placemark by ID.
func (r *GormPlacemarkRepository) FindByID(ctx context.Context, id uuid.UUID) (*placemarkDomain.Placemark, error) {
	var model PlacemarkModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Placemark", id.String())
		}
		return nil, fmt.Errorf("failed to find placemark by ID: %w", err)
	}
	return toPlacemarkDomain(&model), nil
}

// Find lists placemarks matching the filter, oldest first.
func (r *GormPlacemarkRepository) Find(ctx context.Context, filter placemarkDomain.Filter) ([]*placemarkDomain.Placemark, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", filter.OwnerID)
	switch filter.State {
	case placemarkDomain.StateEphemeral:
		q = q.Where("destination_id IS NULL")
	case placemarkDomain.StateOwned:
		q = q.Where("destination_id IS NOT NULL")
	}
	if filter.DestinationID != nil {
		q = q.Where("destination_id = ?", *filter.DestinationID)
	}

	var models []PlacemarkModel
	if err := q.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find placemarks: %w", err)
	}
	return toPlacemarkDomains(models), nil
}

// FindByDestination lists the placemarks owned by a destination.
func (r *GormPlacemarkRepository) FindByDestination(ctx context.Context, destinationID uuid.UUID) ([]*placemarkDomain.Placemark, error) {
	var models []PlacemarkModel
	if err := r.db.WithContext(ctx).
		Where("destination_id = ?", destinationID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find destination placemarks: %w", err)
	}
	return toPlacemarkDomains(models), nil
}

// DeleteEphemeral removes every placemark of the owner without a destination.
func (r *GormPlacemarkRepository) DeleteEphemeral(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND destination_id IS NULL", ownerID).
		Delete(&PlacemarkModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete ephemeral placemarks: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountByState returns placemark counts keyed by state (admin).
func (r *GormPlacemarkRepository) CountByState(ctx context.Context) (map[string]int64, error) {
	type stateCount struct {
		State string
		Count int64
	}
	var results []stateCount
	if err := r.db.WithContext(ctx).Model(&PlacemarkModel{}).
		Select("CASE WHEN destination_id IS NULL THEN 'ephemeral' ELSE 'owned' END AS state, count(*) AS count").
		Group("state").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count placemarks by state: %w", err)
	}

	counts := map[string]int64{
		string(placemarkDomain.StateOwned):     0,
		string(placemarkDomain.StateEphemeral): 0,
	}
	for _, sc := range results {
		counts[sc.State] = sc.Count
	}
	return counts, nil
}

func toPlacemarkModel(p *placemarkDomain.Placemark) PlacemarkModel {
	return PlacemarkModel{
		ID:            p.ID(),
		OwnerID:       p.OwnerID(),
		DestinationID: p.DestinationID(),
		Name:          p.Name(),
		Address:       p.Address(),
		Latitude:      p.Coordinate().Latitude,
		Longitude:     p.Coordinate().Longitude,
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toPlacemarkDomain(m *PlacemarkModel) *placemarkDomain.Placemark {
	return placemarkDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Name,
		m.Address,
		geo.Coordinate{Latitude: m.Latitude, Longitude: m.Longitude},
		m.DestinationID,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toPlacemarkDomains(models []PlacemarkModel) []*placemarkDomain.Placemark {
	placemarks := make([]*placemarkDomain.Placemark, len(models))
	for i := range models {
		placemarks[i] = toPlacemarkDomain(&models[i])
	}
	return placemarks
}
