// Package storage provides session store implementations for the auth core.
//
// A session store holds at most one access token. Absence of a token means
// "no session". Backends: OS keyring (default for installed clients), file
// (XDG-compliant location), and memory (tests, ephemeral sessions).
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/fathomerp/fathom-auth/pkg/auth/types"
)

// ErrNotFound is returned by Load when no session is stored. It is distinct
// from *PersistenceError: an absent token is a normal logged-out condition,
// not a storage failure.
var ErrNotFound = errors.New("no session stored")

// PersistenceError reports a storage read/write failure. Write failures are
// always surfaced; callers decide how to treat read failures (the session
// manager treats an unreadable store as logged out).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SessionStore persists the current access token across process restarts.
// Implementations hold a single logical slot; writes are last-write-wins.
type SessionStore interface {
	// Save stores the token, replacing any previous one.
	Save(ctx context.Context, token *types.AccessToken) error
	// Load retrieves the stored token. Returns ErrNotFound when no session
	// exists and *PersistenceError when the backend cannot be read.
	Load(ctx context.Context) (*types.AccessToken, error)
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Factory creates session store instances based on configuration.
type Factory struct{}

// NewFactory creates a new storage factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a session store instance based on the configuration.
func (f *Factory) Create(config *types.StorageConfig, appName string) (SessionStore, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	switch config.Type {
	case types.StorageTypeFile:
		return NewFileStore(config, appName)
	case types.StorageTypeKeyring:
		return NewKeyringStore(config)
	case types.StorageTypeMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}
