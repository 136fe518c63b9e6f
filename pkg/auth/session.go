package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/fathomerp/fathom-auth/pkg/auth/storage"
	"github.com/fathomerp/fathom-auth/pkg/auth/types"
	"github.com/fathomerp/fathom-auth/pkg/config"
	log "github.com/sirupsen/logrus"
)

// pendingAuthorization correlates an in-flight login attempt with its
// eventual redirect callback. It lives only between Login and the redirect
// (or cancellation) and is consumed exactly once. A single slot exists: a
// new Login silently replaces any prior attempt, so a late redirect for an
// abandoned attempt fails the state check.
type pendingAuthorization struct {
	pair  *PKCEPair
	state string
}

// SessionManager orchestrates the login flow (launch, redirect, exchange,
// store) and drives logout. It owns the observable AuthState; nothing else
// mutates it.
type SessionManager struct {
	cfg       *config.AuthConfig
	store     storage.SessionStore
	launcher  Launcher
	exchanger TokenExchanger
	logout    LogoutClient
	log       *log.Entry

	mu        sync.Mutex
	pending   *pendingAuthorization
	state     AuthState
	subs      map[int]chan AuthState
	nextSubID int
}

// Option customizes a SessionManager, mainly for tests.
type Option func(*SessionManager)

// WithLauncher replaces the system browser launcher.
func WithLauncher(l Launcher) Option {
	return func(m *SessionManager) { m.launcher = l }
}

// WithExchanger replaces the token exchange client.
func WithExchanger(e TokenExchanger) Option {
	return func(m *SessionManager) { m.exchanger = e }
}

// WithLogoutClient replaces the logout client.
func WithLogoutClient(l LogoutClient) Option {
	return func(m *SessionManager) { m.logout = l }
}

// NewSessionManager creates a session manager. The configuration is
// validated up front; a malformed endpoint or redirect URI fails here
// rather than mid-flow.
//
// The initial AuthState is derived from the store: a stored token means
// Authenticated. An unreadable store is treated as logged out.
func NewSessionManager(cfg *config.AuthConfig, store storage.SessionStore, opts ...Option) (*SessionManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is required", ErrInvalidConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: session store is required", ErrInvalidConfiguration)
	}

	m := &SessionManager{
		cfg:       cfg,
		store:     store,
		launcher:  &SystemBrowser{},
		exchanger: NewTokenExchangeClient(cfg),
		logout:    NewHTTPLogoutClient(cfg),
		log:       log.WithField("component", "session"),
		state:     AuthState{Status: StatusUnauthenticated},
		subs:      make(map[int]chan AuthState),
	}
	for _, opt := range opts {
		opt(m)
	}

	token, err := store.Load(context.Background())
	switch {
	case err == nil && token != nil:
		m.state = AuthState{Status: StatusAuthenticated, Token: token}
	case err == nil || errors.Is(err, storage.ErrNotFound):
		// logged out
	default:
		m.log.WithError(err).Warn("session store unreadable, starting logged out")
	}

	return m, nil
}

// Login starts a new authorization attempt: generates a fresh PKCE pair and
// state token, records the pending attempt, and opens the authorization URL
// in the external user agent. The observable AuthState does not change;
// completion arrives through HandleRedirect.
//
// Calling Login while an attempt is pending replaces the earlier attempt.
func (m *SessionManager) Login(ctx context.Context) error {
	pair, err := GeneratePKCEPair()
	if err != nil {
		return err
	}
	state, err := GenerateState()
	if err != nil {
		return err
	}

	authURL, err := BuildAuthorizationURL(m.cfg, pair.Challenge, state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.pending = &pendingAuthorization{pair: pair, state: state}
	m.mu.Unlock()

	if err := m.launcher.Open(authURL); err != nil {
		m.CancelLogin()
		return fmt.Errorf("failed to launch authorization request: %w", err)
	}

	m.log.Debug("authorization request launched")
	return nil
}

// CancelLogin discards any pending authorization attempt. A redirect for
// the cancelled attempt will be rejected with ErrNoPendingLogin.
func (m *SessionManager) CancelLogin() {
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
}

// HandleRedirect consumes the pending attempt and completes the login:
// validates the state parameter, exchanges the code for a token, persists
// it, and flips AuthState to Authenticated.
//
// The pending attempt is consumed whether or not the call succeeds; on any
// failure AuthState stays Unauthenticated and the user must restart login.
func (m *SessionManager) HandleRedirect(ctx context.Context, code, state string) (*types.AccessToken, error) {
	m.mu.Lock()
	p := m.pending
	m.pending = nil
	m.mu.Unlock()

	if p == nil {
		return nil, ErrNoPendingLogin
	}
	if state != p.state {
		m.log.Warn("rejected redirect with mismatched state parameter")
		return nil, ErrStateMismatch
	}

	token, err := m.exchanger.Exchange(ctx, code, p.pair.Verifier)
	if err != nil {
		return nil, err
	}

	if err := m.store.Save(ctx, token); err != nil {
		return nil, err
	}

	m.setState(AuthState{Status: StatusAuthenticated, Token: token})
	m.log.WithField("token", MaskToken(token.Token)).Debug("session established")
	return token, nil
}

// HandleRedirectURI parses a platform-delivered redirect callback URI and
// completes the login from its code and state parameters. A callback
// carrying error= aborts the pending attempt and surfaces an
// *AuthorizationError.
func (m *SessionManager) HandleRedirectURI(ctx context.Context, raw string) (*types.AccessToken, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}

	q := u.Query()
	if errCode := q.Get("error"); errCode != "" {
		m.CancelLogin()
		return nil, &AuthorizationError{
			Code:        errCode,
			Description: q.Get("error_description"),
		}
	}

	return m.HandleRedirect(ctx, q.Get("code"), q.Get("state"))
}

// Logout terminates the session. With no stored token it clears the store
// and reports success without a network call. With a token it requires a
// confirmed server-side logout before clearing: on failure the session is
// left intact (ErrLogoutFailed) so the caller can retry.
func (m *SessionManager) Logout(ctx context.Context) error {
	token, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.log.WithError(err).Warn("session store unreadable during logout, treating as logged out")
		}
		token = nil
	}

	if token == nil || token.Token == "" {
		if err := m.store.Clear(ctx); err != nil {
			return err
		}
		m.setState(AuthState{Status: StatusUnauthenticated})
		return nil
	}

	if !m.logout.Logout(ctx, token.Token) {
		return ErrLogoutFailed
	}

	clearErr := m.store.Clear(ctx)
	m.setState(AuthState{Status: StatusUnauthenticated})
	return clearErr
}

// State returns the current session state.
func (m *SessionManager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a latest-value channel of session states plus a cancel
// function. The current state is delivered immediately; a slow reader only
// ever misses intermediate values, never the latest. Cancel closes the
// channel.
func (m *SessionManager) Subscribe() (<-chan AuthState, func()) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	ch := make(chan AuthState, 1)
	ch <- m.state
	m.subs[id] = ch
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// setState swaps the observable state and notifies subscribers. Stale
// undelivered values are dropped so the buffered send never blocks.
func (m *SessionManager) setState(state AuthState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = state
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}
