package config

import (
	"testing"
)

func validConfig() *AuthConfig {
	return &AuthConfig{
		AuthorizationEndpoint: "https://sso.example.com/auth",
		TokenEndpoint:         "https://sso.example.com/token",
		LogoutEndpoint:        "https://sso.example.com/logout",
		ClientID:              "erp-client",
		RedirectURI:           "erp://callback",
		Scopes:                []string{"openid"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AuthConfig)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(c *AuthConfig) {},
			wantErr: false,
		},
		{
			name:    "custom redirect scheme is fine",
			mutate:  func(c *AuthConfig) { c.RedirectURI = "fathom://callback" },
			wantErr: false,
		},
		{
			name:    "loopback redirect is fine",
			mutate:  func(c *AuthConfig) { c.RedirectURI = "http://127.0.0.1:9998/callback" },
			wantErr: false,
		},
		{
			name:    "missing authorization endpoint",
			mutate:  func(c *AuthConfig) { c.AuthorizationEndpoint = "" },
			wantErr: true,
		},
		{
			name:    "authorization endpoint without scheme",
			mutate:  func(c *AuthConfig) { c.AuthorizationEndpoint = "sso.example.com/auth" },
			wantErr: true,
		},
		{
			name:    "token endpoint with non-http scheme",
			mutate:  func(c *AuthConfig) { c.TokenEndpoint = "ftp://sso.example.com/token" },
			wantErr: true,
		},
		{
			name:    "logout endpoint without host",
			mutate:  func(c *AuthConfig) { c.LogoutEndpoint = "https:///logout" },
			wantErr: true,
		},
		{
			name:    "missing client id",
			mutate:  func(c *AuthConfig) { c.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "redirect uri without scheme",
			mutate:  func(c *AuthConfig) { c.RedirectURI = "callback" },
			wantErr: true,
		},
		{
			name:    "unparseable redirect uri",
			mutate:  func(c *AuthConfig) { c.RedirectURI = "://callback" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
