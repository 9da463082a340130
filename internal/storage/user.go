package storage

import (
	"context"
	"errors"

	"github.com/s/investorAcademy/internal/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func (r *UserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := pick(r.db, tx).WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, classify("users.get", err)
	}
	return &user, nil
}

// Save finds a user by Google ID; if found, it updates the profile fields,
// otherwise it creates the user with the default role. RoleID is managed by an admin
// and never overwritten here.
func (r *UserRepo) Save(ctx context.Context, tx *gorm.DB, info models.User) (*models.User, error) {
	db := pick(r.db, tx).WithContext(ctx)

	var existing models.User
	err := db.Where("google_id = ?", info.GoogleID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"email":   info.Email,
			"name":    info.Name,
			"picture": info.Picture,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, classify("users.save", err)
		}
		return &existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		info.ID = 0
		info.RoleID = models.RoleUser
		if err := db.Create(&info).Error; err != nil {
			return nil, classify("users.save", err)
		}
		return &info, nil

	default:
		return nil, classify("users.save", err)
	}
}
