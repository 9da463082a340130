package database

import (
	"github.com/s/investorAcademy/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Course{},
		&models.Lesson{},
		&models.LessonProgress{},
		&models.Enrollment{},
		&models.UserLog{},
	)
}
