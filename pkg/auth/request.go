package auth

import (
	"fmt"
	"net/url"

	"github.com/fathomerp/fathom-auth/pkg/config"
	"golang.org/x/oauth2"
)

// BuildAuthorizationURL builds the authorization-endpoint URL for one login
// attempt. The query carries response_type=code, client_id, redirect_uri,
// scope (space-joined), code_challenge, code_challenge_method=S256 and
// state. Deterministic: same inputs produce the same URL.
func BuildAuthorizationURL(cfg *config.AuthConfig, codeChallenge, state string) (string, error) {
	u, err := url.Parse(cfg.AuthorizationEndpoint)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("%w: authorization endpoint %q is not a valid URL", ErrInvalidConfiguration, cfg.AuthorizationEndpoint)
	}

	oc := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURI,
		Scopes:      cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL: cfg.AuthorizationEndpoint,
		},
	}

	return oc.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}
