package db

import (
	"fmt"

	"github.com/cashclear/cashclear-pro/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table used by the service.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(models.All()...); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
