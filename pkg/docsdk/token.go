package docsdk

import (
	"context"
	"net/http"

	"github.com/foliodocs/folio/pkg/session"
)

// TokenPair is the identity-provider response carrying fresh credential
// material. The access token embeds its own expiry claim; ExpiresIn is
// advisory only.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// LoginPassword exchanges user credentials for a token pair. This is the
// login-time producer of credential material; feed the result to
// session.Manager.Login to start a session.
func (c *Client) LoginPassword(ctx context.Context, email, password string) (*TokenPair, error) {
	resp, err := c.doRaw(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var pair TokenPair
	if err := decodeJSON(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}

	return &pair, nil
}

// ExchangeRefresh trades a refresh token for a new credential pair. Refresh
// tokens are single-use server side; after a successful exchange the old one
// is dead. Deliberately unguarded, and never retried here: the session layer
// owns single-flight coordination and failure handling.
func (c *Client) ExchangeRefresh(ctx context.Context, refreshToken string) (session.Pair, error) {
	resp, err := c.doRaw(ctx, http.MethodPost, "/v1/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return session.Pair{}, err
	}

	var pair TokenPair
	if err := decodeJSON(resp, &pair, http.StatusOK); err != nil {
		return session.Pair{}, err
	}

	return session.Pair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// RevokeRefresh invalidates a refresh token server-side. Called by the
// session layer on user-initiated logout, best effort.
func (c *Client) RevokeRefresh(ctx context.Context, refreshToken string) error {
	resp, err := c.doRaw(ctx, http.MethodPost, "/v1/auth/logout", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}

var _ session.TokenService = (*Client)(nil)
