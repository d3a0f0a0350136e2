package session

import (
	"context"

	"github.com/foliodocs/folio/pkg/jwtx"
)

// refreshFlightKey keys the single refresh flight. There is never more than
// one exchange per process, so the key is fixed.
const refreshFlightKey = "refresh"

// refresh obtains a fresh credential pair, coalescing concurrent demand into
// a single exchange. Callers arriving while an exchange is in flight attach
// to it and receive the same outcome: the same new pair, or the same
// RefreshError. A failed refresh is terminal for the session and forces
// logout; there is no internal retry.
func (m *Manager) refresh(ctx context.Context) (Pair, error) {
	m.mu.RLock()
	sessCtx := m.sessCtx
	state := m.state
	m.mu.RUnlock()

	if state != StateAuthenticated || sessCtx == nil {
		return Pair{}, ErrNotAuthenticated
	}

	// The exchange runs on the session context, not the first caller's, so
	// one caller giving up does not fail everyone attached to the flight.
	ch := m.sf.DoChan(refreshFlightKey, func() (any, error) {
		return m.exchange(sessCtx)
	})

	select {
	case <-ctx.Done():
		return Pair{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Pair{}, res.Err
		}
		return res.Val.(Pair), nil
	}
}

// exchange performs the actual refresh. Runs at most once per flight.
func (m *Manager) exchange(sessCtx context.Context) (Pair, error) {
	m.mu.RLock()
	refreshToken := m.pair.RefreshToken
	m.mu.RUnlock()

	if refreshToken == "" {
		err := &RefreshError{Reason: "no refresh token held"}
		m.ForceLogout(ReasonSessionExpired)
		return Pair{}, err
	}

	cctx, cancel := context.WithTimeout(sessCtx, m.exchangeTimeout)
	defer cancel()

	fresh, err := m.tokens.ExchangeRefresh(cctx, refreshToken)
	if err != nil {
		if sessCtx.Err() != nil {
			// Torn down while the exchange was in flight; waiters get a
			// cancellation, not a refresh failure.
			return Pair{}, ErrSessionClosed
		}

		rerr := &RefreshError{Reason: "refresh exchange failed", Err: err}
		m.log.Warn("refresh exchange failed", "error", err)
		m.ForceLogout(ReasonSessionExpired)
		return Pair{}, rerr
	}

	ident, err := jwtx.IdentityOf(fresh.AccessToken)
	if err != nil {
		rerr := &RefreshError{Reason: "refreshed token undecodable", Err: err}
		m.log.Warn("refreshed token undecodable", "error", err)
		m.ForceLogout(ReasonSessionExpired)
		return Pair{}, rerr
	}

	m.mu.Lock()
	if sessCtx.Err() != nil || m.state != StateAuthenticated {
		// Session ended while the exchange succeeded on the wire. Discard.
		m.mu.Unlock()
		return Pair{}, ErrSessionClosed
	}
	m.pair = fresh
	m.identity = ident
	// Persisted while still inside the state-checked section. A teardown
	// cannot run between the commit and the write, so a logout never leaves
	// the fresh pair behind in the store.
	if err := m.store.Save(fresh); err != nil {
		m.log.Warn("persisting refreshed credentials failed", "error", err)
	}
	m.mu.Unlock()

	m.log.Debug("credentials refreshed", "subject", ident.Subject, "expires_at", ident.ExpiresAt)
	return fresh, nil
}
