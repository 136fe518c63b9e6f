package main

import (
	"fmt"

	"github.com/fathomerp/fathom-auth/pkg/auth/storage"
	"github.com/fathomerp/fathom-auth/pkg/auth/types"
	"github.com/fathomerp/fathom-auth/pkg/config"
	"github.com/spf13/cobra"
)

const appName = "fathom-auth"

// loadConfig resolves the auth configuration from the --env and --config
// flags.
func loadConfig(cmd *cobra.Command) (*config.AuthConfig, error) {
	env, _ := cmd.Flags().GetString("env")
	path, _ := cmd.Flags().GetString("config")

	switch config.Environment(env) {
	case config.EnvDebug, config.EnvRelease:
	default:
		return nil, fmt.Errorf("unknown environment %q (want debug or release)", env)
	}

	return config.Load(config.Environment(env), path)
}

// openStore builds the session store selected by the --storage flag.
func openStore(cmd *cobra.Command) (storage.SessionStore, error) {
	backend, _ := cmd.Flags().GetString("storage")

	cfg := &types.StorageConfig{
		Type:           types.StorageType(backend),
		KeyringService: appName,
	}

	return storage.NewFactory().Create(cfg, appName)
}
