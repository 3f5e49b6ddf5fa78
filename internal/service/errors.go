package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	// ErrNoPatientProfile: у пользователя-пациента нет карточки пациента.
	ErrNoPatientProfile = errors.New("patient profile not found")
)

// ValidationError: ошибка входных данных, Field содержит имя поля запроса.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
