package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fathomerp/fathom-auth/pkg/auth/types"
	"github.com/fathomerp/fathom-auth/pkg/config"
	log "github.com/sirupsen/logrus"
)

const (
	connectTimeout = 10 * time.Second
	requestTimeout = 15 * time.Second

	// maxErrorBody caps the diagnostic snippet read from error responses.
	maxErrorBody = 512
)

// TokenExchanger exchanges an authorization code for an access token.
type TokenExchanger interface {
	Exchange(ctx context.Context, code, codeVerifier string) (*types.AccessToken, error)
}

// TokenExchangeClient performs the authorization-code-for-token HTTP
// exchange against the token endpoint.
type TokenExchangeClient struct {
	endpoint    string
	clientID    string
	redirectURI string
	httpClient  *http.Client
	log         *log.Entry
}

// NewTokenExchangeClient creates a token exchange client for the given
// configuration.
func NewTokenExchangeClient(cfg *config.AuthConfig) *TokenExchangeClient {
	return &TokenExchangeClient{
		endpoint:    cfg.TokenEndpoint,
		clientID:    cfg.ClientID,
		redirectURI: cfg.RedirectURI,
		httpClient:  newHTTPClient(),
		log:         log.WithField("component", "token-exchange"),
	}
}

// newHTTPClient builds the shared client for auth server calls: a finite
// connect timeout plus an overall request deadline, so a stalled exchange
// surfaces as a timeout instead of hanging.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			TLSHandshakeTimeout: connectTimeout,
		},
	}
}

// tokenResponse is the JSON body of a successful token exchange.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	IDToken      string `json:"id_token"`
}

// Exchange posts the authorization code and PKCE verifier to the token
// endpoint and parses the response.
//
// Non-2xx responses surface as *ExchangeError, 2xx responses without a
// usable access_token as *MalformedResponseError, and network failures as
// *TransportError. Nothing is retried here.
func (c *TokenExchangeClient) Exchange(ctx context.Context, code, codeVerifier string) (*types.AccessToken, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("client_id", c.clientID)
	form.Set("code_verifier", codeVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := classifyTransportError(err)
		c.log.WithError(err).Warn("token endpoint unreachable")
		return nil, terr
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.WithField("status", resp.StatusCode).Warn("token endpoint rejected the exchange")
		return nil, &ExchangeError{
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if strings.TrimSpace(payload.AccessToken) == "" {
		return nil, &MalformedResponseError{Reason: "access_token is missing or blank"}
	}

	token := &types.AccessToken{
		Token:        payload.AccessToken,
		TokenType:    payload.TokenType,
		RefreshToken: payload.RefreshToken,
		IDToken:      payload.IDToken,
	}
	if payload.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}

	c.log.Debug("token exchange completed")
	return token, nil
}

// classifyTransportError wraps a network failure, flagging timeouts so
// callers can present a retry-eligible message.
func classifyTransportError(err error) *TransportError {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		timeout = true
	}
	return &TransportError{Err: err, Timeout: timeout}
}
