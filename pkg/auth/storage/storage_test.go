package storage

import (
	"path/filepath"
	"testing"

	"github.com/fathomerp/fathom-auth/pkg/auth/types"
)

func TestFactory_Create(t *testing.T) {
	tests := []struct {
		name    string
		config  *types.StorageConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name: "memory",
			config: &types.StorageConfig{
				Type: types.StorageTypeMemory,
			},
			wantErr: false,
		},
		{
			name: "file",
			config: &types.StorageConfig{
				Type: types.StorageTypeFile,
				Path: filepath.Join(t.TempDir(), "session.json"),
			},
			wantErr: false,
		},
		{
			name: "keyring",
			config: &types.StorageConfig{
				Type:           types.StorageTypeKeyring,
				KeyringService: "fathom-auth-test",
			},
			wantErr: false,
		},
		{
			name: "unsupported type",
			config: &types.StorageConfig{
				Type: "redis",
			},
			wantErr: true,
		},
	}

	factory := NewFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := factory.Create(tt.config, "fathom-auth-test")
			if (err != nil) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && store == nil {
				t.Error("Create() returned nil store")
			}
		})
	}
}
