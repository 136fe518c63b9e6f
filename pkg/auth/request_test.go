package auth

import (
	"errors"
	"net/url"
	"testing"

	"github.com/fathomerp/fathom-auth/pkg/config"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		AuthorizationEndpoint: "https://sso.example.com/auth",
		TokenEndpoint:         "https://sso.example.com/token",
		LogoutEndpoint:        "https://sso.example.com/logout",
		ClientID:              "erp-client",
		RedirectURI:           "erp://callback",
		Scopes:                []string{"openid", "profile"},
	}
}

func TestBuildAuthorizationURL_Params(t *testing.T) {
	cfg := testAuthConfig()

	raw, err := BuildAuthorizationURL(cfg, "challenge-123", "state-456")
	if err != nil {
		t.Fatalf("BuildAuthorizationURL() error = %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("built URL does not parse: %v", err)
	}
	if got := u.Scheme + "://" + u.Host + u.Path; got != cfg.AuthorizationEndpoint {
		t.Errorf("base URL = %q, want %q", got, cfg.AuthorizationEndpoint)
	}

	q := u.Query()
	want := map[string]string{
		"response_type":         "code",
		"client_id":             "erp-client",
		"redirect_uri":          "erp://callback",
		"scope":                 "openid profile",
		"code_challenge":        "challenge-123",
		"code_challenge_method": "S256",
		"state":                 "state-456",
	}
	for key, value := range want {
		if got := q.Get(key); got != value {
			t.Errorf("query[%s] = %q, want %q", key, got, value)
		}
	}
}

func TestBuildAuthorizationURL_Deterministic(t *testing.T) {
	cfg := testAuthConfig()

	first, err := BuildAuthorizationURL(cfg, "c", "s")
	if err != nil {
		t.Fatalf("BuildAuthorizationURL() error = %v", err)
	}
	second, err := BuildAuthorizationURL(cfg, "c", "s")
	if err != nil {
		t.Fatalf("BuildAuthorizationURL() error = %v", err)
	}

	if first != second {
		t.Errorf("same inputs produced different URLs:\n%s\n%s", first, second)
	}
}

func TestBuildAuthorizationURL_InvalidEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "unparseable", endpoint: "://missing-scheme"},
		{name: "no scheme", endpoint: "sso.example.com/auth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAuthConfig()
			cfg.AuthorizationEndpoint = tt.endpoint

			_, err := BuildAuthorizationURL(cfg, "c", "s")
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}
