package storage

import (
	"context"
	"encoding/json"

	"github.com/s/investorAcademy/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LogRepo struct {
	db *gorm.DB
}

// Record appends an audit entry; details is marshalled into the JSON column.
func (r *LogRepo) Record(ctx context.Context, tx *gorm.DB, userID uint, action string, details interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	entry := models.UserLog{UserID: userID, Action: action, Details: datatypes.JSON(raw)}
	if err := pick(r.db, tx).WithContext(ctx).Create(&entry).Error; err != nil {
		return classify("logs.record", err)
	}
	return nil
}

func (r *LogRepo) ListByAction(ctx context.Context, tx *gorm.DB, action string) ([]models.UserLog, error) {
	var rows []models.UserLog
	if err := pick(r.db, tx).WithContext(ctx).
		Where("action = ?", action).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, classify("logs.list", err)
	}
	return rows, nil
}
