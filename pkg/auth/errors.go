package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates a malformed endpoint or redirect URI.
	// This is a fatal configuration problem, not a runtime failure.
	ErrInvalidConfiguration = errors.New("invalid auth configuration")

	// ErrCryptoUnavailable indicates the secure random source failed, so no
	// PKCE pair or state token can be produced and login cannot proceed.
	ErrCryptoUnavailable = errors.New("secure random source unavailable")

	// ErrStateMismatch indicates the redirect's state parameter does not
	// match the pending login attempt. The attempt is aborted; this is a
	// CSRF control and is never bypassed.
	ErrStateMismatch = errors.New("state parameter does not match pending login")

	// ErrNoPendingLogin indicates a redirect arrived with no login attempt
	// in flight (or the attempt was already consumed or replaced).
	ErrNoPendingLogin = errors.New("no login attempt is pending")

	// ErrLogoutFailed indicates server-side logout could not be confirmed.
	// The local session is left intact so the caller can retry.
	ErrLogoutFailed = errors.New("server-side logout failed")
)

// TransportError reports a network-level failure (connect, DNS, timeout)
// talking to the authorization server. Distinct from *ExchangeError so
// callers can tell "unreachable" from "reachable but rejecting".
type TransportError struct {
	Err     error
	Timeout bool
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timed out: %v", e.Err)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExchangeError reports a non-2xx response from the token endpoint. Body
// holds a truncated response snippet for diagnostics.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError reports a 2xx token response that violates the
// server contract (missing or blank access_token, unparseable JSON).
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed token response: %s", e.Reason)
}

// AuthorizationError reports an error callback from the authorization
// server (redirect carrying error= instead of code=). The attempt is
// treated as aborted, never parsed as success.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization failed: %s (%s)", e.Code, e.Description)
	}
	return fmt.Sprintf("authorization failed: %s", e.Code)
}
