package model

import "time"

// Статусы консультаций, оплат, договоров и опросников.
const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"

	PaymentPending = "pending"
	PaymentPaid    = "paid"

	ContractDraft  = "draft"
	ContractSent   = "sent"
	ContractSigned = "signed"

	QuizPending   = "pending"
	QuizCompleted = "completed"
)

type Session struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	PatientID       int64     `gorm:"not null;index" json:"patient_id"`
	Patient         *Patient  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	StartsAt        time.Time `gorm:"not null;index" json:"starts_at"`
	DurationMinutes int       `gorm:"not null;default:50" json:"duration_minutes"`
	Status          string    `gorm:"not null;default:scheduled" json:"status"`
	Notes           string    `gorm:"type:text" json:"notes"`
	Price           float64   `json:"price"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Payment: оплата. ReceiptID указывает на сгенерированную квитанцию.
type Payment struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	PatientID int64      `gorm:"not null;index" json:"patient_id"`
	Patient   *Patient   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	SessionID *int64     `gorm:"index" json:"session_id"`
	Amount    float64    `gorm:"not null" json:"amount"`
	Method    string     `gorm:"not null;default:cash" json:"method"`
	Status    string     `gorm:"not null;default:pending" json:"status"`
	PaidAt    *time.Time `json:"paid_at"`
	ReceiptID *string    `gorm:"type:uuid" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Contract: договор с пациентом. DocumentID: PDF договора.
type Contract struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	PatientID  int64      `gorm:"not null;index" json:"patient_id"`
	Patient    *Patient   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Title      string     `gorm:"not null" json:"title"`
	Body       string     `gorm:"type:text" json:"body,omitempty"`
	Status     string     `gorm:"not null;default:draft" json:"status"`
	SentAt     *time.Time `json:"sent_at"`
	SignedAt   *time.Time `json:"signed_at"`
	DocumentID *string    `gorm:"type:uuid" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// QuizAssignment: назначение опросника пациенту.
type QuizAssignment struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	PatientID int64      `gorm:"not null;index" json:"patient_id"`
	Patient   *Patient   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	QuizID    int64      `gorm:"not null" json:"quiz_id"`
	QuizTitle string     `gorm:"not null" json:"quiz_title"`
	Status    string     `gorm:"not null;default:pending" json:"status"`
	DueDate   *time.Time `json:"due_date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
