package database

import (
	"gorm.io/gorm"

	"github.com/s/coursehub/internal/models"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Course{},
		&models.InstructorAssignment{},
		&models.Review{},
		&models.Enrollment{},
		&models.ModerationLog{},
		&models.Message{},
	)
}
