package models

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	GoogleID string `gorm:"index" json:"google_id"`
	Email    string `gorm:"uniqueIndex;size:255" json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	RoleID   uint   `json:"role_id"`
	Role     Role   `gorm:"foreignKey:RoleID" json:"-"`
}
