package models

import (
	"time"
)

// SentinelOrderKey temporarily vacates a lesson's slot while two lessons swap
// positions. Real order keys are always >= 1.
const SentinelOrderKey = -1

// Course (программа обучения)
type Course struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
	AuthorID    uint   `json:"author_id"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;"`
}

// Lesson belongs to exactly one course. OrderKey is unique per course at rest;
// gaps are allowed.
type Lesson struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	CourseID uint   `gorm:"not null;uniqueIndex:idx_lessons_course_order,priority:1" json:"course_id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	VideoURL string `json:"video_url,omitempty"`
	Notes    string `json:"notes,omitempty"`
	OrderKey int    `gorm:"not null;uniqueIndex:idx_lessons_course_order,priority:2" json:"order_key"`
}
