// Package auth implements the OAuth2 Authorization Code + PKCE login flow
// for the Fathom ERP client.
//
// The package establishes a session against the authorization server,
// exchanges the redirect-delivered code for an access token, persists the
// session, and terminates it on logout.
//
// # Flow
//
//	mgr, _ := auth.NewSessionManager(cfg, store)
//	_ = mgr.Login(ctx)                     // opens the system browser
//	// ... the platform delivers the redirect callback ...
//	token, err := mgr.HandleRedirectURI(ctx, callbackURI)
//
// Login generates a fresh PKCE verifier/challenge pair and an anti-CSRF
// state token, builds the authorization URL, and hands it to the launcher.
// The redirect callback is validated against the pending attempt before the
// code is exchanged; a state mismatch aborts the attempt.
//
// # Session state
//
// The manager owns a single observable AuthState. Readers either poll
// State() or Subscribe() for a latest-value channel. Only the manager
// mutates the state, and every mutation is a whole-value swap.
//
// # Errors
//
// Runtime failures are typed values (ErrStateMismatch, *TransportError,
// *ExchangeError, *MalformedResponseError, ...) matched with errors.Is and
// errors.As. Configuration problems are fatal and surface when the manager
// is constructed, not mid-flow.
//
// Token refresh is deliberately absent: there is no refresh-token exchange
// path in this client. Expiry on the stored token is advisory only.
package auth

import (
	"github.com/fathomerp/fathom-auth/pkg/auth/types"
)

// AuthStatus enumerates the observable session states.
type AuthStatus string

const (
	// StatusUnauthenticated means no session is active.
	StatusUnauthenticated AuthStatus = "unauthenticated"
	// StatusAuthenticated means a session is active and a token is held.
	StatusAuthenticated AuthStatus = "authenticated"
)

// AuthState is the observable session state. Token is non-nil exactly when
// Status is StatusAuthenticated.
type AuthState struct {
	Status AuthStatus
	Token  *types.AccessToken
}

// Authenticated reports whether the state carries an active session.
func (s AuthState) Authenticated() bool {
	return s.Status == StatusAuthenticated
}
