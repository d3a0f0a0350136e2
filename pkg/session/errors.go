package session

import (
	"errors"
	"fmt"
)

// ReasonSessionExpired is the human-readable reason attached to a forced
// logout after the credential could not be extended.
const ReasonSessionExpired = "Session expired. Please log in again."

var (
	// ErrNotAuthenticated is returned by the request guard when no session
	// is active.
	ErrNotAuthenticated = errors.New("session: not authenticated")

	// ErrSessionClosed is returned to refresh waiters whose session was torn
	// down before the exchange resolved.
	ErrSessionClosed = errors.New("session: session closed")
)

// InvalidCredentialError reports that a token handed to Login could not be
// decoded. It is local and never retried.
type InvalidCredentialError struct {
	Err error
}

func (e *InvalidCredentialError) Error() string {
	return fmt.Sprintf("session: invalid credential: %v", e.Err)
}

func (e *InvalidCredentialError) Unwrap() error { return e.Err }

// RefreshError reports a failed refresh exchange. A refresh failure is
// terminal for the session: the refresh token is single-use and a transient
// network error is surfaced rather than masked, because silently retiring a
// bad refresh token would leave the application appearing logged in.
type RefreshError struct {
	Reason string
	Err    error
}

func (e *RefreshError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("session: refresh failed: %s", e.Reason)
	}
	return fmt.Sprintf("session: refresh failed: %s: %v", e.Reason, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }
