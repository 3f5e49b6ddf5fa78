// Package crypto шифрует локальные данные клиента (кэш записей дневника)
// ключом, который хранится в каталоге пользователя.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// keyLen: длина ключа для AES‑256 (в байтах).
const keyLen = 32

// KeyFileName: имя файла ключа внутри каталога пользователя.
const KeyFileName = "key.bin"

// LoadOrCreateKey загружает ключ из dir/key.bin или создаёт новый случайный.
func LoadOrCreateKey(dir string) ([]byte, error) {
	if dir == "" {
		return nil, errors.New("empty key directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, KeyFileName)
	if b, err := os.ReadFile(path); err == nil {
		if len(b) != keyLen {
			return nil, errors.New("invalid key length")
		}
		return b, nil
	}
	// создаём новый ключ
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	// записываем с ограниченными правами доступа
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt шифрует данные plain с помощью AES‑GCM и заданного ключа.
// Возвращает шифртекст и nonce.
func Encrypt(plain []byte, key []byte) ([]byte, []byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}
	return gcm.Seal(nil, nonce, plain, nil), nonce, nil
}

// Decrypt расшифровывает шифртекст AES‑GCM.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errors.New("invalid nonce size")
	}
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Seal шифрует plain и упаковывает nonce и шифртекст в одну base64-строку для текстовой колонки.
func Seal(plain, key []byte) (string, error) {
	ct, nonce, err := Encrypt(plain, key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(append(nonce, ct...)), nil
}

// Open расшифровывает строку, полученную от Seal.
func Open(sealed string, key []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(raw) < n {
		return nil, errors.New("sealed value too short")
	}
	return Decrypt(raw[n:], raw[:n], key)
}
