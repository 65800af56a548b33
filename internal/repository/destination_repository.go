package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	destinationDomain "github.com/mytrips/service-trips/internal/domain/destination"
	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/pkg/domain"
)

// DestinationModel is the GORM model for the destinations table.
type DestinationModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Name              string    `gorm:"size:200;not null"`
	CenterLatitude    float64   `gorm:"not null;default:0"`
	CenterLongitude   float64   `gorm:"not null;default:0"`
	SpanLatitudeDelta float64   `gorm:"not null;default:0"`
	SpanLongDelta     float64   `gorm:"column:span_longitude_delta;not null;default:0"`
	Version           int64     `gorm:"not null;default:1"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DestinationModel) TableName() string {
	return "destinations"
}

// GormDestinationRepository is the GORM-based implementation of DestinationRepository.
type GormDestinationRepository struct {
	db *gorm.DB
}

// NewGormDestinationRepository creates a new GormDestinationRepository.
func NewGormDestinationRepository(db *gorm.DB) *GormDestinationRepository {
	return &GormDestinationRepository{db: db}
}

// FindByID retrieves a destination by its unique identifier.
func (r *GormDestinationRepository) FindByID(ctx context.Context, id uuid.UUID) (*destinationDomain.Destination, error) {
	var model DestinationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Destination", id.String())
		}
		return nil, fmt.Errorf("failed to find destination by ID: %w", err)
	}
	return toDomainDestination(&model), nil
}

// FindByOwnerID lists an owner's destinations sorted by name with pagination.
func (r *GormDestinationRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*destinationDomain.Destination, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&DestinationModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count destinations: %w", err)
	}

	var models []DestinationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find destinations: %w", err)
	}

	destinations := make([]*destinationDomain.Destination, len(models))
	for i := range models {
		destinations[i] = toDomainDestination(&models[i])
	}
	return destinations, total, nil
}

// Count returns the total number of destinations (admin).
func (r *GormDestinationRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&DestinationModel{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count destinations: %w", err)
	}
	return total, nil
}

// Save persists a new destination.
func (r *GormDestinationRepository) Save(ctx context.Context, d *destinationDomain.Destination) error {
	model := toDestinationModel(d)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save destination: %w", err)
	}
	return nil
}

// Update persists changes to an existing destination with optimistic locking.
func (r *GormDestinationRepository) Update(ctx context.Context, d *destinationDomain.Destination) error {
	model := toDestinationModel(d)

	// The aggregate bumps its version on every change.
	expectedVersion := d.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&DestinationModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":                 model.Name,
			"center_latitude":      model.CenterLatitude,
			"center_longitude":     model.CenterLongitude,
			"span_latitude_delta":  model.SpanLatitudeDelta,
			"span_longitude_delta": model.SpanLongDelta,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update destination: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("destination was modified by another request")
	}
	return nil
}

// Delete removes the destination and its placemarks in one transaction.
func (r *GormDestinationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("destination_id = ?", id).Delete(&PlacemarkModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete destination placemarks: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&DestinationModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete destination: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("Destination", id.String())
		}
		return nil
	})
}

// --- Conversion Helpers ---

func toDestinationModel(d *destinationDomain.Destination) DestinationModel {
	region := d.Region()
	return DestinationModel{
		ID:                d.ID(),
		OwnerID:           d.OwnerID(),
		Name:              d.Name(),
		CenterLatitude:    region.Center.Latitude,
		CenterLongitude:   region.Center.Longitude,
		SpanLatitudeDelta: region.Span.LatitudeDelta,
		SpanLongDelta:     region.Span.LongitudeDelta,
		Version:           d.Version(),
		CreatedAt:         d.CreatedAt(),
		UpdatedAt:         d.UpdatedAt(),
	}
}

func toDomainDestination(m *DestinationModel) *destinationDomain.Destination {
	return destinationDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Name,
		geo.Region{
			Center: geo.Coordinate{Latitude: m.CenterLatitude, Longitude: m.CenterLongitude},
			Span:   geo.Span{LatitudeDelta: m.SpanLatitudeDelta, LongitudeDelta: m.SpanLongDelta},
		},
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
