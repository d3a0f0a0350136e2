package session

import "context"

// Pair is an access/refresh credential pair. A Pair is only ever produced by
// login or by a successful refresh exchange; it is never synthesized or
// mutated client-side.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// IsZero reports whether the pair holds no credentials.
func (p Pair) IsZero() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// CredentialStore persists the current credential pair so a restart resumes
// the session instead of forcing re-login. Load returns a zero Pair and nil
// error when nothing is stored. The Manager is the only writer.
type CredentialStore interface {
	Save(pair Pair) error
	Load() (Pair, error)
	Clear() error
}

// TokenService is the identity-provider surface the Manager consumes: the
// refresh exchange and the best-effort server-side logout. Refresh tokens
// are single-use server side, so a token must not be reused after a
// successful exchange.
type TokenService interface {
	ExchangeRefresh(ctx context.Context, refreshToken string) (Pair, error)
	RevokeRefresh(ctx context.Context, refreshToken string) error
}
