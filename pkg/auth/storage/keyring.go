package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fathomerp/fathom-auth/pkg/auth/types"
	"github.com/zalando/go-keyring"
)

// KeyringStore persists the session in the OS keyring (macOS Keychain,
// GNOME Keyring, Windows Credential Manager).
type KeyringStore struct {
	service string
	user    string
}

// NewKeyringStore creates a new keyring-backed session store.
func NewKeyringStore(config *types.StorageConfig) (*KeyringStore, error) {
	service := config.KeyringService
	if service == "" {
		return nil, fmt.Errorf("keyring_service is required for keyring storage")
	}

	user := config.KeyringUser
	if user == "" {
		user = "default"
	}

	return &KeyringStore{
		service: service,
		user:    user,
	}, nil
}

// Save stores the token in the OS keyring.
func (k *KeyringStore) Save(ctx context.Context, token *types.AccessToken) error {
	if token == nil {
		return &PersistenceError{Op: "save", Err: errors.New("token is nil")}
	}

	data, err := json.Marshal(token)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	if err := keyring.Set(k.service, k.user, string(data)); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	return nil
}

// Load retrieves the token from the OS keyring.
func (k *KeyringStore) Load(ctx context.Context) (*types.AccessToken, error) {
	data, err := keyring.Get(k.service, k.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	var token types.AccessToken
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	return &token, nil
}

// Clear removes the token from the OS keyring.
func (k *KeyringStore) Clear(ctx context.Context) error {
	if err := keyring.Delete(k.service, k.user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}

// Service returns the keyring service name.
func (k *KeyringStore) Service() string {
	return k.service
}
