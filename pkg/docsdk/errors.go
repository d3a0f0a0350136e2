package docsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes returned by the workspace API.
const (
	ErrorCodeInvalidToken  = "invalid_token"
	ErrorCodeForbidden     = "forbidden"
	ErrorCodeNotFound      = "not_found"
	ErrorCodeValidation    = "validation_error"
	ErrorCodeQuotaExceeded = "quota_exceeded"
	ErrorCodeServerError   = "server_error"
)

// APIError is a structured error response from the workspace API. The
// session layer already handled the one recoverable case (expired access
// token, refreshed and replayed once); anything surfacing here is passed to
// the caller unchanged.
type APIError struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.StatusCode)
}

// IsAuthFailure reports whether the error is an authorization rejection that
// survived the guard's single refresh-and-replay.
func (e *APIError) IsAuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// parseErrorResponse turns a non-2xx response body into a typed *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	// Fallback: generic error from the status code.
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
