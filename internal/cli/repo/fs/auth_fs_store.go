package fs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/cli/repo"
)

// AuthFSStore: файловое хранилище токена и контекста пользователя для CLI.
type AuthFSStore struct{}

var (
	_ repo.TokenStore       = AuthFSStore{}
	_ repo.UserContextStore = AuthFSStore{}
)

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "PsyDesk")
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

func tokenPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "auth_token"), nil
}

func userPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "current_user.json"), nil
}

// Save сохраняет auth‑токен в файл.
func (AuthFSStore) Save(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	p, err := tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (AuthFSStore) Load() (string, error) {
	p, err := tokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	// обрезаем завершающие переводы строки/пробелы
	for len(b) > 0 {
		c := b[len(b)-1]
		if c == '\n' || c == '\r' || c == ' ' || c == '\t' {
			b = b[:len(b)-1]
			continue
		}
		break
	}
	if len(b) == 0 {
		return "", errors.New("empty token file")
	}
	return string(b), nil
}

// Clear удаляет файл токена. Отсутствие файла ошибкой не считается.
func (AuthFSStore) Clear() error {
	p, err := tokenPath()
	if err != nil {
		return err
	}
	return removeIfExists(p)
}

// SaveUser сохраняет профиль вошедшего пользователя.
func (AuthFSStore) SaveUser(u model.User) error {
	if u.Email == "" {
		return errors.New("empty user email")
	}
	p, err := userPath()
	if err != nil {
		return err
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// LoadUser читает профиль пользователя.
func (AuthFSStore) LoadUser() (*model.User, error) {
	p, err := userPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, err
	}
	if u.Email == "" {
		return nil, errors.New("no stored user")
	}
	return &u, nil
}

// ClearUser удаляет профиль пользователя.
func (AuthFSStore) ClearUser() error {
	p, err := userPath()
	if err != nil {
		return err
	}
	return removeIfExists(p)
}

func removeIfExists(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
