package model

// Роли пользователей.
const (
	RolePsychologist = "psychologist"
	RolePatient      = "patient"
)

// User: аутентифицированный пользователь.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse: ответ login/register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Patient: пациент психолога.
type Patient struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Status         string `json:"status"`
	PsychologistID ID     `json:"psychologist_id"`
	UserID         ID     `json:"user_id"`
	CreatedAt      Date   `json:"created_at"`
}

type NewPatient struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Status string `json:"status,omitempty"`
}

type Session struct {
	ID              ID      `json:"id"`
	PatientID       ID      `json:"patient_id"`
	StartsAt        Date    `json:"starts_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Status          string  `json:"status"`
	Notes           string  `json:"notes"`
	Price           float64 `json:"price"`
}

type NewSession struct {
	PatientID       ID      `json:"patient_id"`
	StartsAt        string  `json:"starts_at"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Price           float64 `json:"price,omitempty"`
}

// Payment: оплата консультации.
type Payment struct {
	ID        ID      `json:"id"`
	PatientID ID      `json:"patient_id"`
	SessionID ID      `json:"session_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	PaidAt    Date    `json:"paid_at"`
}

type NewPayment struct {
	PatientID ID      `json:"patient_id"`
	SessionID ID      `json:"session_id,omitempty"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method,omitempty"`
}

// Contract: договор с пациентом.
type Contract struct {
	ID        ID     `json:"id"`
	PatientID ID     `json:"patient_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	SentAt    Date   `json:"sent_at"`
	SignedAt  Date   `json:"signed_at"`
}

type NewContract struct {
	PatientID ID     `json:"patient_id"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
}

// QuizAssignment: назначение опросника пациенту.
type QuizAssignment struct {
	ID        ID     `json:"id"`
	PatientID ID     `json:"patient_id"`
	QuizID    ID     `json:"quiz_id"`
	QuizTitle string `json:"quiz_title"`
	Status    string `json:"status"`
	DueDate   Date   `json:"due_date"`
}

type NewQuizAssignment struct {
	PatientID ID     `json:"patient_id"`
	QuizID    ID     `json:"quiz_id"`
	QuizTitle string `json:"quiz_title,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SessionFilters: фильтры списка консультаций.
type SessionFilters struct {
	PatientID ID
	Status    string
	From      string
	To        string
}
