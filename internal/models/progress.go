package models

import "time"

// LessonProgress is a completion record. Its existence means the lesson is
// complete for the user; there is no "not done" row.
type LessonProgress struct {
	UserID      uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CourseID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"course_id"`
	LessonID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"lesson_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
