// Package types defines the session token value shared across the auth packages.
package types

import (
	"time"
)

// AccessToken represents the token material returned by a successful
// authorization-code exchange. Once saved it is owned by the session store;
// there is no second copy elsewhere.
type AccessToken struct {
	// Token is the access token value presented as a Bearer credential.
	Token string `json:"access_token"`
	// TokenType is the token type reported by the server (e.g., "Bearer").
	TokenType string `json:"token_type,omitempty"`
	// RefreshToken is preserved if the server returned one. No refresh
	// exchange exists in this client; the field is carried as-is.
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is the absolute expiry derived from expires_in at receipt
	// time. Zero when the server did not report a lifetime.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	// IDToken is the OpenID Connect id_token, if present.
	IDToken string `json:"id_token,omitempty"`
}

// IsExpired returns true if the token's advisory expiry has passed.
// Tokens without an expiry never report as expired.
func (t *AccessToken) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	// 30 second buffer for clock skew
	return time.Now().Add(30 * time.Second).After(t.ExpiresAt)
}

// StorageConfig selects and parameterizes a session store backend.
type StorageConfig struct {
	// Type is the storage backend type.
	Type StorageType `yaml:"type" json:"type"`
	// Path is the file path for file-based storage.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	// KeyringService is the service name for keyring storage.
	KeyringService string `yaml:"keyring_service,omitempty" json:"keyring_service,omitempty"`
	// KeyringUser is the user name for keyring storage.
	KeyringUser string `yaml:"keyring_user,omitempty" json:"keyring_user,omitempty"`
}

// StorageType represents the type of session storage.
type StorageType string

const (
	// StorageTypeFile uses file-based storage.
	StorageTypeFile StorageType = "file"
	// StorageTypeKeyring uses OS keyring storage.
	StorageTypeKeyring StorageType = "keyring"
	// StorageTypeMemory uses in-memory storage (not persisted).
	StorageTypeMemory StorageType = "memory"
)
