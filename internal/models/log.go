package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionLessonReorderFailed = "lesson_reorder_failed"
	ActionOrderNormalized     = "lesson_order_normalized"
)

// UserLog хранит историю действий пользователя
type UserLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	Action    string         `gorm:"size:64;index" json:"action"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}
