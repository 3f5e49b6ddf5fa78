package repo

import "PsyDesk/internal/cli/model"

// UserContextStore абстракция для хранения контекста пользователя (профиль после входа).
type UserContextStore interface {
	SaveUser(u model.User) error
	LoadUser() (*model.User, error)
	ClearUser() error
}
