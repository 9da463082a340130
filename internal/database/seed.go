package database

import (
	"github.com/s/investorAcademy/internal/models"
	"gorm.io/gorm"
)

func Seed(db *gorm.DB) error {
	roles := []models.Role{
		{ID: models.RoleUser, Name: "User"},
		{ID: models.RoleAdmin, Name: "Admin"},
	}
	for _, role := range roles {
		if err := db.FirstOrCreate(&models.Role{}, role).Error; err != nil {
			return err
		}
	}
	return nil
}
