package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed reports a token that could not be decoded at all.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrNoExpiry reports a token missing the exp claim. Tokens without an
	// expiry cannot participate in margin-based refresh and are rejected.
	ErrNoExpiry = errors.New("jwtx: token has no exp claim")
)

// Claims are the access-token claims the client cares about. The token is
// issued and verified server-side; the client only decodes it to project an
// Identity, so no signature verification happens here.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the display role for the authenticated user ("member",
	// "admin", ...). Shown in the workspace UI next to the user name.
	Role string `json:"role,omitempty"`

	// PreferredName is the display name for the user.
	PreferredName string `json:"preferred_name,omitempty"`
}

// Identity is the cached projection of a decoded access token. It is
// recomputed whenever the token changes and never persisted on its own.
type Identity struct {
	Subject   string
	Role      string
	Name      string
	ExpiresAt time.Time
}

// Decode parses the embedded claims of an access token without verifying
// its signature. Verification is the server's job on every call; the client
// only needs the claim payload, which is readable without a network round
// trip or key material.
func Decode(token string) (*Claims, error) {
	var claims Claims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, ErrMalformed
	}

	if claims.ExpiresAt == nil {
		return nil, ErrNoExpiry
	}

	return &claims, nil
}

// IdentityOf decodes a token into its Identity projection.
func IdentityOf(token string) (*Identity, error) {
	claims, err := Decode(token)
	if err != nil {
		return nil, err
	}

	return &Identity{
		Subject:   claims.Subject,
		Role:      claims.Role,
		Name:      claims.PreferredName,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// UsableAt reports whether the token is still good for at least margin past
// now. A malformed token or one missing its exp claim counts as expired.
// The margin exists so a credential is refreshed before it would fail
// mid-request rather than after.
func UsableAt(token string, margin time.Duration, now time.Time) bool {
	claims, err := Decode(token)
	if err != nil {
		return false
	}

	return now.Add(margin).Before(claims.ExpiresAt.Time)
}

// IsUsable is UsableAt against the current clock.
func IsUsable(token string, margin time.Duration) bool {
	return UsableAt(token, margin, time.Now())
}
