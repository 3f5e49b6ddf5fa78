package keyring

import (
	"errors"
	"fmt"

	"PsyDesk/internal/cli/repo"

	"github.com/99designs/keyring"
)

const (
	serviceName = "psydesk"
	tokenKey    = "auth_token"
)

// Store хранит auth‑токен в системном хранилище секретов вместо файла.
type Store struct {
	ring keyring.Keyring
}

var _ repo.TokenStore = (*Store)(nil)

// Open открывает системный keyring. fileDir используется файловым backend'ом,
// когда ни одно системное хранилище недоступно.
func Open(fileDir string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("psydesk-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

// New оборачивает готовый keyring (используется в тестах с ArrayKeyring).
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

func (s *Store) Save(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := s.ring.Set(keyring.Item{Key: tokenKey, Data: []byte(token)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", tokenKey, err)
	}
	return nil
}

func (s *Store) Load() (string, error) {
	item, err := s.ring.Get(tokenKey)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", tokenKey, err)
	}
	if len(item.Data) == 0 {
		return "", errors.New("empty token")
	}
	return string(item.Data), nil
}

// Clear удаляет токен; отсутствие записи ошибкой не считается.
func (s *Store) Clear() error {
	if err := s.ring.Remove(tokenKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", tokenKey, err)
	}
	return nil
}
