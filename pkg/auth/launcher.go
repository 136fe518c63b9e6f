package auth

import (
	"sync"

	"github.com/skratchdot/open-golang/open"
)

// Launcher opens the authorization URL in an external user agent. Launching
// is fire-and-forget: completion arrives later through the redirect
// callback, never as a return value of Open.
type Launcher interface {
	Open(url string) error
}

// SystemBrowser opens URLs in the system default browser.
type SystemBrowser struct{}

// Open opens a URL in the system default browser.
func (s *SystemBrowser) Open(url string) error {
	return open.Run(url)
}

// MockLauncher records opened URLs for tests.
type MockLauncher struct {
	mu         sync.Mutex
	OpenedURLs []string
	Err        error
}

// Open records the URL and returns the configured error.
func (m *MockLauncher) Open(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OpenedURLs = append(m.OpenedURLs, url)
	return m.Err
}

// LastURL returns the most recently opened URL, or "" if none.
func (m *MockLauncher) LastURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.OpenedURLs) == 0 {
		return ""
	}
	return m.OpenedURLs[len(m.OpenedURLs)-1]
}
