package session

import (
	"context"
	"io"
	"net/http"

	"github.com/foliodocs/folio/pkg/idx"
	"github.com/foliodocs/folio/pkg/slogx"
)

// Do issues an authenticated request through the pipeline guard: it stamps
// the current access token as a bearer credential, and on an authorization
// failure refreshes once and replays the call exactly once with the new
// token. A second rejection, or a failed refresh, surfaces the ORIGINAL
// authorization failure unchanged so the caller sees what the server said.
// The refresh exchange itself never goes through this guard.
func (m *Manager) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	m.mu.RLock()
	token := m.pair.AccessToken
	authed := m.state == StateAuthenticated
	m.mu.RUnlock()

	if !authed || token == "" {
		return nil, ErrNotAuthenticated
	}

	reqID := req.Header.Get("X-Request-Id")
	if reqID == "" {
		reqID = idx.New().String()
		req.Header.Set("X-Request-Id", reqID)
	}
	// Bind the correlation ID into the context so the transport and anything
	// downstream log the same req_id the server sees.
	ctx = slogx.WithRequestID(ctx, reqID)

	resp, err := m.send(ctx, req, req.Body, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// One refresh-and-replay per logical call, enforced here rather than by
	// a retried flag on a shared request object.
	if req.Body != nil && req.GetBody == nil {
		// The body was consumed and cannot be rewound; surface the failure.
		return resp, nil
	}

	fresh, rerr := m.refresh(ctx)
	if rerr != nil {
		return resp, nil
	}

	var body io.ReadCloser
	if req.GetBody != nil {
		body, err = req.GetBody()
		if err != nil {
			return resp, nil
		}
	}

	drain(resp)

	retry, err := m.send(ctx, req, body, fresh.AccessToken)
	if err != nil {
		return nil, err
	}
	return retry, nil
}

// send clones the request so the caller's copy is never mutated, attaches
// the bearer token and executes it.
func (m *Manager) send(ctx context.Context, req *http.Request, body io.ReadCloser, token string) (*http.Response, error) {
	r := req.Clone(ctx)
	r.Body = body
	r.Header.Set("Authorization", "Bearer "+token)

	return m.http.Do(r)
}

// drain discards and closes a response body so the underlying connection
// can be reused.
func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
