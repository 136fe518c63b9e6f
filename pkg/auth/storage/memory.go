package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/fathomerp/fathom-auth/pkg/auth/types"
)

// MemoryStore holds the session in process memory only. Intended for tests
// and ephemeral sessions; nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	token *types.AccessToken
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores a copy of the token.
func (m *MemoryStore) Save(ctx context.Context, token *types.AccessToken) error {
	if token == nil {
		return &PersistenceError{Op: "save", Err: errors.New("token is nil")}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *token
	m.token = &clone
	return nil
}

// Load returns a copy of the stored token.
func (m *MemoryStore) Load(ctx context.Context) (*types.AccessToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return nil, ErrNotFound
	}

	clone := *m.token
	return &clone, nil
}

// Clear removes the stored token.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = nil
	return nil
}
