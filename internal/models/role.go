package models

type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`

	Users []User
}

// RoleID values stored on User.
const (
	RoleGuest uint = 0
	RoleUser  uint = 1
	RoleAdmin uint = 2
)
