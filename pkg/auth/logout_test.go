package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func logoutClientFor(serverURL string) *HTTPLogoutClient {
	cfg := testAuthConfig()
	cfg.LogoutEndpoint = serverURL + "/logout"
	return NewHTTPLogoutClient(cfg)
}

func TestLogout_Success(t *testing.T) {
	var gotAuth string
	var gotMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := logoutClientFor(server.URL)
	ok := client.Logout(context.Background(), "tok-1")

	assert.True(t, ok)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestLogout_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError, http.StatusFound} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := logoutClientFor(server.URL)
		client.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
		ok := client.Logout(context.Background(), "tok-1")
		server.Close()

		assert.False(t, ok, "status %d must report failure", status)
	}
}

func TestLogout_TransportFailureReturnsFalse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := logoutClientFor(server.URL)
	assert.False(t, client.Logout(context.Background(), "tok-1"))
}
