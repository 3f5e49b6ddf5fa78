package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo     repo.UserRepository
	patients repo.PatientRepository
}

func NewUserService(r repo.UserRepository, patients repo.PatientRepository) *UserService {
	return &UserService{repo: r, patients: patients}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register создаёт пользователя. Пациент привязывается к карточке,
// которую психолог завёл на тот же email.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, invalid("name", "El nombre es obligatorio")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, invalid("email", "El correo electrónico no es válido")
	}
	if len(in.Password) < 6 {
		return nil, invalid("password", "La contraseña debe tener al menos 6 caracteres")
	}
	if in.Role == "" {
		in.Role = model.RolePatient
	}
	if in.Role != model.RolePsychologist && in.Role != model.RolePatient {
		return nil, invalid("role", "Rol desconocido")
	}

	existing, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     in.Role,
	})
	if err != nil {
		return nil, err
	}
	if user.Role == model.RolePatient && s.patients != nil {
		if p, err := s.patients.FindUnlinkedByEmail(ctx, user.Email); err == nil {
			if err := s.patients.LinkUser(ctx, p.ID, user.ID); err != nil {
				return nil, err
			}
		}
	}
	return user, nil
}

// Login проверяет email и пароль.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get возвращает пользователя по id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}
