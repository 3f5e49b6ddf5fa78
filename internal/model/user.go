package model

import "time"

// Роли пользователей.
const (
	RolePsychologist = "psychologist"
	RolePatient      = "patient"
)

// User: учётная запись психолога или пациента.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash
	Role     string `gorm:"not null;default:patient" json:"role"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
