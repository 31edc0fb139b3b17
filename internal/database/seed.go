package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/s/coursehub/internal/models"
)

// Seed creates the fixed role rows.
func Seed(db *gorm.DB) error {
	roles := []models.Role{
		{ID: models.RoleStudent, Name: "Student"},
		{ID: models.RoleAdmin, Name: "Admin"},
		{ID: models.RoleTeacher, Name: "Teacher"},
	}
	for _, role := range roles {
		if err := db.FirstOrCreate(&models.Role{}, role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", role.Name, err)
		}
	}
	return nil
}
