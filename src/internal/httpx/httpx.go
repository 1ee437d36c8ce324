package httpx

import (
	"net/http"
	"time"
)

// Doer is the minimal HTTP client interface used across packages, so tests
// can inject fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserAgent identifies outbound requests; dblp.org asks clients to send a
// descriptive agent string.
const UserAgent = "bibrarian/1.0 (+https://github.com/bibrarian/bibrarian)"

// SetUA sets the UserAgent header on the request.
func SetUA(req *http.Request) {
	if req != nil {
		req.Header.Set("User-Agent", UserAgent)
	}
}

// NewClient returns the default client for remote repositories.
func NewClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}
