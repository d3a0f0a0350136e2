package session

import (
	"context"
	"time"

	"github.com/foliodocs/folio/pkg/jwtx"
)

// revalidate is the background loop that keeps an idle session from holding
// a token that would fail on the next user action. It runs for the lifetime
// of one session and exits when the session context is cancelled.
func (m *Manager) revalidate(ctx context.Context) {
	ticker := time.NewTicker(m.revalidateEvery)
	defer ticker.Stop()

	m.log.Debug("revalidator started", "interval", m.revalidateEvery, "margin", m.margin)

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("revalidator stopped")
			return
		case <-ticker.C:
			m.revalidateTick(ctx)
		}
	}
}

func (m *Manager) revalidateTick(ctx context.Context) {
	m.mu.RLock()
	accessToken := m.pair.AccessToken
	refreshToken := m.pair.RefreshToken
	m.mu.RUnlock()

	if jwtx.IsUsable(accessToken, m.margin) {
		return
	}

	if refreshToken == "" {
		m.log.Warn("access token stale and no refresh token held")
		m.ForceLogout(ReasonSessionExpired)
		return
	}

	if _, err := m.refresh(ctx); err != nil {
		// The refresh path has already forced logout. The session ending is
		// the only user-visible signal for a proactive check.
		m.log.Warn("proactive refresh failed", "error", err)
	}
}
