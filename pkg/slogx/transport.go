package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that logs every outbound request with
// method, host, path, status and duration. A logger bound to the request
// context takes precedence over Logger; otherwise the request ID is picked
// up from the X-Request-Id header when a caller upstream has stamped one.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewTransport wraps base with request logging. A nil base falls back to
// http.DefaultTransport, a nil logger to slog.Default().
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	logger, boundToCtx := loggerFrom(req.Context())
	if !boundToCtx {
		logger = t.Logger
		if logger == nil {
			logger = slog.Default()
		}
		if reqID := req.Header.Get("X-Request-Id"); reqID != "" {
			logger = logger.With("req_id", reqID)
		}
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		logger.Warn("http_request_failed",
			"method", req.Method,
			"host", req.URL.Host,
			"path", req.URL.Path,
			"duration_ms", duration,
			"error", err,
		)
		return nil, err
	}

	logger.Debug("http_request",
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", duration,
	)

	return resp, nil
}
