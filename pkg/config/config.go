// Package config handles loading and validation of the auth configuration.
//
// Configuration resolution follows the usual layering: built-in defaults
// for the selected environment, then an optional user YAML file, then
// FATHOM_AUTH_* environment variables. The environment (debug vs release)
// is fixed at build time in the binary; it selects the authorization server
// base URL, while client_id and redirect_uri are fixed per build.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment selects the authorization server address set.
type Environment string

const (
	// EnvDebug targets the local development server. The host is the
	// emulator's loopback alias so a device image reaches the workstation.
	EnvDebug Environment = "debug"
	// EnvRelease targets the production authorization server.
	EnvRelease Environment = "release"
)

const (
	debugBaseURL   = "http://10.0.2.2:8180"
	releaseBaseURL = "https://sso.fathom-erp.com"

	oidcPath = "/realms/fathom/protocol/openid-connect"

	defaultClientID    = "fathom-mobile"
	defaultRedirectURI = "fathom://callback"

	envPrefix = "FATHOM_AUTH"
)

// AuthConfig holds everything needed to run the authorization-code flow.
// Immutable after Load; selected once per process.
type AuthConfig struct {
	AuthorizationEndpoint string   `mapstructure:"authorization_endpoint" yaml:"authorization_endpoint"`
	TokenEndpoint         string   `mapstructure:"token_endpoint" yaml:"token_endpoint"`
	LogoutEndpoint        string   `mapstructure:"logout_endpoint" yaml:"logout_endpoint"`
	ClientID              string   `mapstructure:"client_id" yaml:"client_id"`
	RedirectURI           string   `mapstructure:"redirect_uri" yaml:"redirect_uri"`
	Scopes                []string `mapstructure:"scopes" yaml:"scopes"`
}

// Defaults returns the built-in configuration for an environment.
func Defaults(env Environment) *AuthConfig {
	base := releaseBaseURL
	if env == EnvDebug {
		base = debugBaseURL
	}

	return &AuthConfig{
		AuthorizationEndpoint: base + oidcPath + "/auth",
		TokenEndpoint:         base + oidcPath + "/token",
		LogoutEndpoint:        base + oidcPath + "/logout",
		ClientID:              defaultClientID,
		RedirectURI:           defaultRedirectURI,
		Scopes:                []string{"openid", "profile", "erp"},
	}
}

// Load resolves the configuration for an environment, optionally merging a
// user YAML file and FATHOM_AUTH_* environment overrides, and validates the
// result. Validation failures here are fatal configuration errors.
func Load(env Environment, path string) (*AuthConfig, error) {
	d := Defaults(env)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("authorization_endpoint", d.AuthorizationEndpoint)
	v.SetDefault("token_endpoint", d.TokenEndpoint)
	v.SetDefault("logout_endpoint", d.LogoutEndpoint)
	v.SetDefault("client_id", d.ClientID)
	v.SetDefault("redirect_uri", d.RedirectURI)
	v.SetDefault("scopes", d.Scopes)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read auth config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg AuthConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse auth config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Dump renders the effective configuration as YAML.
func (c *AuthConfig) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal auth config: %w", err)
	}
	return string(data), nil
}
