package service

import (
	"context"
	"errors"
	"strings"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"
)

// AuthService описывает юзкейс-уровень аутентификации для CLI.
type AuthService interface {
	// Register создаёт аккаунт и сразу возвращает токен.
	Register(ctx context.Context, r model.Registration) (*model.AuthResponse, error)

	// Login логирование пользователя.
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)

	// Logout инвалидирует токен на сервере.
	Logout(ctx context.Context) error

	// Me возвращает профиль по текущему токену.
	Me(ctx context.Context) (*model.User, error)
}

type authHTTP struct {
	c *api.Client
}

// NewAuthService конструктор сервиса аутентификации
func NewAuthService(c *api.Client) AuthService {
	return &authHTTP{c: c}
}

func (s *authHTTP) Register(ctx context.Context, r model.Registration) (*model.AuthResponse, error) {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return nil, errors.New("email and password are required")
	}
	if r.Role == "" {
		r.Role = model.RolePatient
	}
	var out model.AuthResponse
	if err := s.c.PostJSON(ctx, "/api/auth/register", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *authHTTP) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	var out model.AuthResponse
	if err := s.c.PostJSON(ctx, "/api/auth/login", model.Credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *authHTTP) Logout(ctx context.Context) error {
	return s.c.PostJSON(ctx, "/api/auth/logout", nil, nil)
}

func (s *authHTTP) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := s.c.GetJSON(ctx, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
