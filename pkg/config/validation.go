package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for fatal errors. Endpoints must be
// absolute http(s) URLs; the redirect URI must parse with a non-empty
// scheme (custom schemes are the normal case for the mobile client).
func (c *AuthConfig) Validate() error {
	if err := requireHTTPURL("authorization_endpoint", c.AuthorizationEndpoint); err != nil {
		return err
	}
	if err := requireHTTPURL("token_endpoint", c.TokenEndpoint); err != nil {
		return err
	}
	if err := requireHTTPURL("logout_endpoint", c.LogoutEndpoint); err != nil {
		return err
	}

	if c.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}

	u, err := url.Parse(c.RedirectURI)
	if err != nil {
		return fmt.Errorf("redirect_uri %q is not a valid URI: %w", c.RedirectURI, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("redirect_uri %q must have a scheme", c.RedirectURI)
	}

	return nil
}

// requireHTTPURL validates that value is an absolute http or https URL.
func requireHTTPURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s %q is not a valid URL: %w", name, value, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q must be an http(s) URL", name, value)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q is missing a host", name, value)
	}
	return nil
}
