// Package helpers provides test doubles shared by the integration suites.
package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MockAuthServer is an in-process authorization server implementing the
// three endpoints the auth core talks to: /authorize, /token and /logout.
// It validates the PKCE S256 binding between the two protocol steps.
type MockAuthServer struct {
	server   *httptest.Server
	clientID string

	mu            sync.Mutex
	codes         map[string]*issuedCode
	revoked       []string
	rejectLogout  bool
	tokenLifetime int
}

// issuedCode is an authorization code bound to its request parameters.
type issuedCode struct {
	challenge   string
	redirectURI string
	used        bool
}

// NewMockAuthServer starts a mock authorization server for the client ID.
func NewMockAuthServer(clientID string) *MockAuthServer {
	ms := &MockAuthServer{
		clientID:      clientID,
		codes:         make(map[string]*issuedCode),
		tokenLifetime: 3600,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/authorize", ms.handleAuthorize)
	mux.HandleFunc("/token", ms.handleToken)
	mux.HandleFunc("/logout", ms.handleLogout)

	ms.server = httptest.NewServer(mux)
	return ms
}

// URL returns the server base URL.
func (ms *MockAuthServer) URL() string {
	return ms.server.URL
}

// Close shuts down the server.
func (ms *MockAuthServer) Close() {
	ms.server.Close()
}

// SetRejectLogout makes /logout answer 500, simulating a server that cannot
// confirm the logout.
func (ms *MockAuthServer) SetRejectLogout(reject bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rejectLogout = reject
}

// RevokedTokens returns the tokens successfully logged out so far.
func (ms *MockAuthServer) RevokedTokens() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]string, len(ms.revoked))
	copy(out, ms.revoked)
	return out
}

// handleAuthorize auto-approves the request and redirects back with a
// single-use code bound to the presented code_challenge.
func (ms *MockAuthServer) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("response_type") != "code" || q.Get("client_id") != ms.clientID {
		http.Error(w, "invalid_request", http.StatusBadRequest)
		return
	}
	if q.Get("code_challenge") == "" || q.Get("code_challenge_method") != "S256" {
		http.Error(w, "invalid_request: PKCE required", http.StatusBadRequest)
		return
	}

	redirectURI := q.Get("redirect_uri")
	target, err := url.Parse(redirectURI)
	if err != nil || target.Scheme == "" {
		http.Error(w, "invalid_request: bad redirect_uri", http.StatusBadRequest)
		return
	}

	code := randomToken()
	ms.mu.Lock()
	ms.codes[code] = &issuedCode{
		challenge:   q.Get("code_challenge"),
		redirectURI: redirectURI,
	}
	ms.mu.Unlock()

	cb := target.Query()
	cb.Set("code", code)
	cb.Set("state", q.Get("state"))
	target.RawQuery = cb.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

// handleToken exchanges a code for a token after verifying the five form
// fields and the S256 digest of the presented verifier.
func (ms *MockAuthServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid_request", http.StatusMethodNotAllowed)
		return
	}
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		http.Error(w, "invalid_request: bad content type", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid_request", http.StatusBadRequest)
		return
	}

	form := r.PostForm
	if form.Get("grant_type") != "authorization_code" || form.Get("client_id") != ms.clientID {
		writeOAuthError(w, http.StatusBadRequest, "unauthorized_client")
		return
	}

	ms.mu.Lock()
	issued, ok := ms.codes[form.Get("code")]
	if ok && !issued.used {
		issued.used = true
	} else {
		ok = false
	}
	ms.mu.Unlock()

	if !ok {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
		return
	}
	if issued.redirectURI != form.Get("redirect_uri") {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	sum := sha256.Sum256([]byte(form.Get("code_verifier")))
	if base64.RawURLEncoding.EncodeToString(sum[:]) != issued.challenge {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token": randomToken(),
		"token_type":   "Bearer",
		"expires_in":   ms.tokenLifetime,
	})
}

// handleLogout records the revoked token. Requires a Bearer credential.
func (ms *MockAuthServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid_request", http.StatusMethodNotAllowed)
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	ms.mu.Lock()
	reject := ms.rejectLogout
	if !reject {
		ms.revoked = append(ms.revoked, token)
	}
	ms.mu.Unlock()

	if reject {
		http.Error(w, "logout unavailable", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

func randomToken() string {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// FollowAuthorize performs the authorization request without following the
// redirect and returns the callback URI the server answered with.
func FollowAuthorize(authURL string) (string, error) {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(authURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.Header.Get("Location"), nil
}
