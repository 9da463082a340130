package models

import "gorm.io/gorm"

const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
	EnrollmentRejected = "rejected"
)

// Enrollment (Заявка на курс / Подписка)
type Enrollment struct {
	gorm.Model
	UserID   uint   `gorm:"index" json:"user_id"`
	CourseID uint   `gorm:"index" json:"course_id"`
	Status   string `gorm:"size:16;not null;default:pending" json:"status"` // pending, approved, rejected

	User   User   `json:"user" gorm:"foreignKey:UserID"`
	Course Course `json:"course" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;"`
}
