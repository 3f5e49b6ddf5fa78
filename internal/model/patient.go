package model

import "time"

// Статусы пациента.
const (
	PatientActive     = "active"
	PatientInactive   = "inactive"
	PatientDischarged = "discharged"
)

// Patient: карточка пациента у психолога. UserID заполняется,
// когда пациент заводит собственный аккаунт.
type Patient struct {
	ID             int64  `gorm:"primaryKey" json:"id"`
	PsychologistID int64  `gorm:"not null;index" json:"psychologist_id"`
	UserID         *int64 `gorm:"index" json:"user_id"`

	Name   string `gorm:"not null" json:"name"`
	Email  string `gorm:"index" json:"email"`
	Phone  string `json:"phone"`
	Status string `gorm:"not null;default:active;index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ValidPatientStatus проверяет статус пациента.
func ValidPatientStatus(s string) bool {
	return s == PatientActive || s == PatientInactive || s == PatientDischarged
}
