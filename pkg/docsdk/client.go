package docsdk

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// AuthDoer issues a request with the current session's credentials attached,
// refreshing and replaying once on an authorization failure. Implemented by
// *session.Manager.
type AuthDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the Folio workspace API.
type Client struct {
	BaseURL string

	// HTTPClient executes the unauthenticated identity-provider calls.
	HTTPClient *http.Client

	// Session is the guard for all workspace API calls. Must be set before
	// any authenticated method is used.
	Session AuthDoer

	// Limiter optionally throttles all outbound calls so bulk operations
	// (upload sweeps, compare batches) don't hammer the API. Nil disables
	// throttling.
	Limiter *rate.Limiter
}

// NewClient creates a workspace API client. The session guard is wired
// afterwards because the session manager itself consumes this client for
// token exchanges.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// throttle blocks until the limiter admits another call, if one is set.
func (c *Client) throttle(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	return c.Limiter.Wait(ctx)
}
