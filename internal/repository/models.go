package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates the schema from the GORM models. Used for sqlite and
// development runs; postgres deployments use the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&DestinationModel{}, &PlacemarkModel{}); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}
