package service

import (
	"context"
	"errors"
	"testing"

	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.PatientRepository: используются только методы привязки
type mockPatientRepo struct {
	mock.Mock
	repo.PatientRepository
}

func (m *mockPatientRepo) FindUnlinkedByEmail(ctx context.Context, email string) (*model.Patient, error) {
	args := m.Called(ctx, email)
	if p, ok := args.Get(0).(*model.Patient); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPatientRepo) LinkUser(ctx context.Context, patientID, userID int64) error {
	return m.Called(ctx, patientID, userID).Error(0)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	pm := new(mockPatientRepo)
	svc := NewUserService(m, pm)

	t.Run("ok when email free", func(t *testing.T) {
		m.ExpectedCalls, pm.ExpectedCalls = nil, nil
		m.On("GetUserByEmail", mock.Anything, "john@example.com").Return((*model.User)(nil), repo.ErrNotFound).Once()
		created := &model.User{ID: 10, Name: "John", Email: "john@example.com", Role: model.RolePsychologist}
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "john@example.com" && u.Password != "" && u.Password != "p@ssword"
		})).Return(created, nil).Once()

		user, err := svc.Register(ctx, RegisterInput{Name: "John", Email: " John@Example.com ", Password: "p@ssword", Role: model.RolePsychologist})
		assert.NoError(t, err)
		assert.Equal(t, int64(10), user.ID)
		m.AssertExpectations(t)
		pm.AssertNotCalled(t, "FindUnlinkedByEmail", mock.Anything, mock.Anything)
	})

	t.Run("patient is linked to existing card", func(t *testing.T) {
		m.ExpectedCalls, pm.ExpectedCalls = nil, nil
		m.On("GetUserByEmail", mock.Anything, "ana@example.com").Return((*model.User)(nil), repo.ErrNotFound).Once()
		m.On("CreateUser", mock.Anything, mock.Anything).
			Return(&model.User{ID: 11, Email: "ana@example.com", Role: model.RolePatient}, nil).Once()
		pm.On("FindUnlinkedByEmail", mock.Anything, "ana@example.com").Return(&model.Patient{ID: 4}, nil).Once()
		pm.On("LinkUser", mock.Anything, int64(4), int64(11)).Return(nil).Once()

		_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret"})
		assert.NoError(t, err)
		m.AssertExpectations(t)
		pm.AssertExpectations(t)
	})

	t.Run("conflict when email taken", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "john@example.com").Return(&model.User{ID: 1, Email: "john@example.com"}, nil).Once()

		user, err := svc.Register(ctx, RegisterInput{Name: "John", Email: "john@example.com", Password: "p@ssword"})
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrEmailTaken)
		m.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		m.ExpectedCalls, m.Calls = nil, nil
		cases := map[string]RegisterInput{
			"name":     {Email: "a@b.c", Password: "secret"},
			"email":    {Name: "A", Email: "not-an-email", Password: "secret"},
			"password": {Name: "A", Email: "a@b.c", Password: "123"},
			"role":     {Name: "A", Email: "a@b.c", Password: "secret", Role: "admin"},
		}
		for field, in := range cases {
			_, err := svc.Register(ctx, in)
			var ve *ValidationError
			if assert.True(t, errors.As(err, &ve), field) {
				assert.Equal(t, field, ve.Field)
			}
		}
		m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m, nil)

	// готовим хеш для пароля "secret"
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)

	t.Run("ok with valid credentials", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(&model.User{ID: 2, Email: "alice@example.com", Password: string(hash)}, nil).Once()

		user, err := svc.Login(ctx, "alice@example.com", "secret")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), user.ID)
		m.AssertExpectations(t)
	})

	t.Run("invalid password", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(&model.User{ID: 2, Email: "alice@example.com", Password: string(hash)}, nil).Once()

		user, err := svc.Login(ctx, "alice@example.com", "wrong")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		m.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return((*model.User)(nil), repo.ErrNotFound).Once()

		_, err := svc.Login(ctx, "nobody@example.com", "secret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
