package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Service - имя сервиса в системном хранилище секретов
const Service = "serpctl"

var ErrNotFound = errors.New("credentials not found in keyring")

// Keyring хранит пароль API в системном keyring, ключ - имя пользователя
type Keyring struct {
	service string
}

func NewKeyring() *Keyring {
	return &Keyring{service: Service}
}

func (k *Keyring) Get(username string) (string, error) {
	password, err := keyring.Get(k.service, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return password, nil
}

func (k *Keyring) Set(username, password string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if err := keyring.Set(k.service, username, password); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (k *Keyring) Delete(username string) error {
	if err := keyring.Delete(k.service, username); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
