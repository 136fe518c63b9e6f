package auth

import (
	"context"
	"io"
	"net/http"

	"github.com/fathomerp/fathom-auth/pkg/config"
	log "github.com/sirupsen/logrus"
)

// LogoutClient invalidates a session server-side. The boolean result is a
// soft signal: true only for a confirmed 2xx, false for everything else.
// Logout never produces a hard error.
type LogoutClient interface {
	Logout(ctx context.Context, accessToken string) bool
}

// HTTPLogoutClient posts to the logout endpoint with a Bearer credential.
type HTTPLogoutClient struct {
	endpoint   string
	httpClient *http.Client
	log        *log.Entry
}

// NewHTTPLogoutClient creates a logout client for the given configuration.
func NewHTTPLogoutClient(cfg *config.AuthConfig) *HTTPLogoutClient {
	return &HTTPLogoutClient{
		endpoint:   cfg.LogoutEndpoint,
		httpClient: newHTTPClient(),
		log:        log.WithField("component", "logout"),
	}
}

// Logout posts to the logout endpoint with the bearer-prefixed token and an
// empty body. Returns true only for a 2xx response.
func (c *HTTPLogoutClient) Logout(ctx context.Context, accessToken string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, nil)
	if err != nil {
		c.log.WithError(err).Warn("failed to build logout request")
		return false
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("logout request failed")
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithFields(log.Fields{
			"status": resp.StatusCode,
			"token":  MaskToken(accessToken),
		}).Warn("logout rejected by server")
		return false
	}

	return true
}
