package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/fathomerp/fathom-auth/pkg/auth/types"
)

// FileStore persists the session as a JSON file with restricted permissions.
type FileStore struct {
	path string
}

// NewFileStore creates a new file-backed session store. When no path is
// configured the XDG state directory for the application is used.
func NewFileStore(config *types.StorageConfig, appName string) (*FileStore, error) {
	path := config.Path
	if path == "" {
		path = filepath.Join(xdg.StateHome, appName, "session.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, &PersistenceError{Op: "init", Err: err}
	}

	return &FileStore{
		path: path,
	}, nil
}

// Save writes the token to disk. The write goes through a temporary file and
// an atomic rename so a crash cannot leave a truncated session file.
func (f *FileStore) Save(ctx context.Context, token *types.AccessToken) error {
	if token == nil {
		return &PersistenceError{Op: "save", Err: errors.New("token is nil")}
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistenceError{Op: "save", Err: err}
	}

	return nil
}

// Load reads the token from disk.
func (f *FileStore) Load(ctx context.Context) (*types.AccessToken, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	var token types.AccessToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	return &token, nil
}

// Clear deletes the session file.
func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}

// Path returns the path to the session file.
func (f *FileStore) Path() string {
	return f.path
}
