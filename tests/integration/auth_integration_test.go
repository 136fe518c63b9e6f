package integration

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathomerp/fathom-auth/pkg/auth"
	"github.com/fathomerp/fathom-auth/pkg/auth/storage"
	"github.com/fathomerp/fathom-auth/pkg/config"
	"github.com/fathomerp/fathom-auth/tests/helpers"
)

const testClientID = "fathom-mobile"

// newTestSetup wires a session manager against a live mock authorization
// server, using the real exchange and logout clients. Only the browser
// launch is replaced.
func newTestSetup(t *testing.T) (*auth.SessionManager, *helpers.MockAuthServer, *auth.MockLauncher, storage.SessionStore) {
	t.Helper()

	server := helpers.NewMockAuthServer(testClientID)
	t.Cleanup(server.Close)

	cfg := &config.AuthConfig{
		AuthorizationEndpoint: server.URL() + "/authorize",
		TokenEndpoint:         server.URL() + "/token",
		LogoutEndpoint:        server.URL() + "/logout",
		ClientID:              testClientID,
		RedirectURI:           "fathom://callback",
		Scopes:                []string{"openid", "profile"},
	}

	launcher := &auth.MockLauncher{}
	store := storage.NewMemoryStore()

	manager, err := auth.NewSessionManager(cfg, store, auth.WithLauncher(launcher))
	require.NoError(t, err)

	return manager, server, launcher, store
}

// completeLogin drives the browser leg of the flow: fetches the launched
// authorization URL and returns the callback URI the server redirected to.
func completeLogin(t *testing.T, launcher *auth.MockLauncher) string {
	t.Helper()

	authURL := launcher.LastURL()
	require.NotEmpty(t, authURL, "no authorization URL was launched")

	callback, err := helpers.FollowAuthorize(authURL)
	require.NoError(t, err)
	require.NotEmpty(t, callback, "authorization endpoint did not redirect")
	return callback
}

func TestLoginFlow_EndToEnd(t *testing.T) {
	manager, _, launcher, store := newTestSetup(t)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))
	assert.False(t, manager.State().Authenticated(), "launching must not authenticate")

	callback := completeLogin(t, launcher)

	token, err := manager.HandleRedirectURI(ctx, callback)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.False(t, token.IsExpired())

	assert.True(t, manager.State().Authenticated())

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, token.Token, stored.Token)
}

func TestLoginFlow_RedirectPreservesCustomScheme(t *testing.T) {
	manager, _, launcher, _ := newTestSetup(t)
	require.NoError(t, manager.Login(context.Background()))

	callback := completeLogin(t, launcher)

	u, err := url.Parse(callback)
	require.NoError(t, err)
	assert.Equal(t, "fathom", u.Scheme)
	assert.NotEmpty(t, u.Query().Get("code"))
	assert.NotEmpty(t, u.Query().Get("state"))
}

func TestLoginFlow_TamperedStateRejected(t *testing.T) {
	manager, _, launcher, store := newTestSetup(t)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))
	callback := completeLogin(t, launcher)

	u, err := url.Parse(callback)
	require.NoError(t, err)
	q := u.Query()
	q.Set("state", q.Get("state")+"x")
	u.RawQuery = q.Encode()

	_, err = manager.HandleRedirectURI(ctx, u.String())
	require.ErrorIs(t, err, auth.ErrStateMismatch)
	assert.False(t, manager.State().Authenticated())

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The attempt was consumed; even the genuine callback is now rejected.
	_, err = manager.HandleRedirectURI(ctx, callback)
	assert.ErrorIs(t, err, auth.ErrNoPendingLogin)
}

func TestLoginFlow_CodeIsSingleUse(t *testing.T) {
	manager, _, launcher, _ := newTestSetup(t)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))
	callback := completeLogin(t, launcher)

	_, err := manager.HandleRedirectURI(ctx, callback)
	require.NoError(t, err)

	// Replaying the same callback needs a fresh pending attempt; with one,
	// the server refuses the spent code.
	require.NoError(t, manager.Login(ctx))

	u, err := url.Parse(callback)
	require.NoError(t, err)
	freshAuth := launcher.LastURL()
	fresh, err := url.Parse(freshAuth)
	require.NoError(t, err)
	q := u.Query()
	q.Set("state", fresh.Query().Get("state"))
	u.RawQuery = q.Encode()

	_, err = manager.HandleRedirectURI(ctx, u.String())
	var exchangeErr *auth.ExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	assert.Equal(t, 400, exchangeErr.StatusCode)
}

func TestLoginFlow_VerifierMustMatchChallenge(t *testing.T) {
	manager, _, launcher, _ := newTestSetup(t)
	ctx := context.Background()

	// First attempt issues a code bound to its challenge.
	require.NoError(t, manager.Login(ctx))
	firstCallback := completeLogin(t, launcher)

	// A second Login replaces the pending verifier, so redeeming the first
	// code now presents the wrong verifier for its challenge.
	require.NoError(t, manager.Login(ctx))
	secondAuth, err := url.Parse(launcher.LastURL())
	require.NoError(t, err)

	u, err := url.Parse(firstCallback)
	require.NoError(t, err)
	q := u.Query()
	q.Set("state", secondAuth.Query().Get("state"))
	u.RawQuery = q.Encode()

	_, err = manager.HandleRedirectURI(ctx, u.String())
	var exchangeErr *auth.ExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	assert.False(t, manager.State().Authenticated())
}

func TestLoginFlow_DeniedConsent(t *testing.T) {
	manager, _, _, _ := newTestSetup(t)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))

	_, err := manager.HandleRedirectURI(ctx, "fathom://callback?error=access_denied&error_description=user+cancelled")
	var authErr *auth.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "access_denied", authErr.Code)
	assert.False(t, manager.State().Authenticated())
}

func TestLogout_EndToEnd(t *testing.T) {
	manager, server, launcher, store := newTestSetup(t)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))
	token, err := manager.HandleRedirectURI(ctx, completeLogin(t, launcher))
	require.NoError(t, err)

	require.NoError(t, manager.Logout(ctx))
	assert.False(t, manager.State().Authenticated())

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	revoked := server.RevokedTokens()
	require.Len(t, revoked, 1)
	assert.Equal(t, token.Token, revoked[0])
}

func TestLogout_ServerFailureKeepsSession(t *testing.T) {
	manager, server, launcher, store := newTestSetup(t)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))
	_, err := manager.HandleRedirectURI(ctx, completeLogin(t, launcher))
	require.NoError(t, err)

	server.SetRejectLogout(true)
	err = manager.Logout(ctx)
	require.ErrorIs(t, err, auth.ErrLogoutFailed)

	// Session survives for a retry.
	assert.True(t, manager.State().Authenticated())
	_, err = store.Load(ctx)
	require.NoError(t, err)

	server.SetRejectLogout(false)
	require.NoError(t, manager.Logout(ctx))
	assert.False(t, manager.State().Authenticated())
}

func TestSessionRestoredAcrossManagers(t *testing.T) {
	manager, _, launcher, store := newTestSetup(t)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))
	_, err := manager.HandleRedirectURI(ctx, completeLogin(t, launcher))
	require.NoError(t, err)

	// A second manager over the same store starts authenticated, without
	// talking to the server.
	cfg := &config.AuthConfig{
		AuthorizationEndpoint: "https://sso.example.com/auth",
		TokenEndpoint:         "https://sso.example.com/token",
		LogoutEndpoint:        "https://sso.example.com/logout",
		ClientID:              testClientID,
		RedirectURI:           "fathom://callback",
	}
	restored, err := auth.NewSessionManager(cfg, store, auth.WithLauncher(&auth.MockLauncher{}))
	require.NoError(t, err)
	assert.True(t, restored.State().Authenticated())
}

func TestSubscribe_ObservesFullFlow(t *testing.T) {
	manager, _, launcher, _ := newTestSetup(t)
	ctx := context.Background()

	states, cancel := manager.Subscribe()
	defer cancel()

	initial := <-states
	assert.Equal(t, auth.StatusUnauthenticated, initial.Status)

	require.NoError(t, manager.Login(ctx))
	_, err := manager.HandleRedirectURI(ctx, completeLogin(t, launcher))
	require.NoError(t, err)

	loggedIn := <-states
	assert.Equal(t, auth.StatusAuthenticated, loggedIn.Status)
	require.NotNil(t, loggedIn.Token)

	require.NoError(t, manager.Logout(ctx))
	loggedOut := <-states
	assert.Equal(t, auth.StatusUnauthenticated, loggedOut.Status)
	assert.Nil(t, loggedOut.Token)
}

func TestLoginFlow_ContextCancellation(t *testing.T) {
	manager, _, launcher, _ := newTestSetup(t)

	require.NoError(t, manager.Login(context.Background()))
	callback := completeLogin(t, launcher)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manager.HandleRedirectURI(cancelled, callback)
	require.Error(t, err)
	var transportErr *auth.TransportError
	if errors.As(err, &transportErr) {
		assert.True(t, transportErr.Timeout || errors.Is(transportErr.Err, context.Canceled))
	}
	assert.False(t, manager.State().Authenticated())
}
