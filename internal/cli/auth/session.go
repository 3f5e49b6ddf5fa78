package auth

import (
	"errors"
	"sync"

	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/repo"
)

// ErrNotLoggedIn: нет активной сессии.
var ErrNotLoggedIn = errors.New("not logged in: run `psycli login` first")

// Session хранит токен и профиль текущего пользователя.
// Передаётся компонентам при создании вместо чтения глобального состояния.
type Session struct {
	mu     sync.RWMutex
	tokens repo.TokenStore
	users  repo.UserContextStore
	token  string
	user   *model.User
}

// NewSession создаёт пустую сессию поверх хранилищ. Restore подгружает сохранённое состояние.
func NewSession(tokens repo.TokenStore, users repo.UserContextStore) *Session {
	return &Session{tokens: tokens, users: users}
}

// Restore читает токен и профиль из хранилищ. Отсутствие любого из них
// оставляет сессию неаутентифицированной и ошибкой не считается.
func (s *Session) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = "", nil
	tok, err := s.tokens.Load()
	if err != nil || tok == "" {
		return
	}
	u, err := s.users.LoadUser()
	if err != nil {
		return
	}
	s.token, s.user = tok, u
}

// Start сохраняет результат login/register и делает сессию активной.
func (s *Session) Start(resp model.AuthResponse) error {
	if resp.Token == "" {
		return errors.New("server returned empty token")
	}
	if err := s.tokens.Save(resp.Token); err != nil {
		return err
	}
	if err := s.users.SaveUser(resp.User); err != nil {
		return err
	}
	s.mu.Lock()
	u := resp.User
	s.token, s.user = resp.Token, &u
	s.mu.Unlock()
	return nil
}

// End очищает сессию и хранилища.
func (s *Session) End() error {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()
	return errors.Join(s.tokens.Clear(), s.users.ClearUser())
}

// Load реализует api.TokenSource.
func (s *Session) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNotLoggedIn
	}
	return s.token, nil
}

// User возвращает профиль текущего пользователя.
func (s *Session) User() (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, ErrNotLoggedIn
	}
	return *s.user, nil
}

// Authenticated сообщает, есть ли активная сессия.
func (s *Session) Authenticated() bool {
	_, err := s.User()
	return err == nil
}

// IsPsychologist определяет клиническое представление списков.
func (s *Session) IsPsychologist() bool {
	u, err := s.User()
	return err == nil && u.Role == model.RolePsychologist
}
