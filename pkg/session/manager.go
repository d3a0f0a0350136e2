// Package session holds the authentication state for the workspace client:
// the current credential pair, the identity projected from it, and the
// machinery that keeps both fresh. It coordinates refresh exchanges so at
// most one is in flight per process, replays authenticated calls once after
// a refresh, and tears the session down when a credential cannot be
// extended.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/foliodocs/folio/pkg/jwtx"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle state of the session.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateLoggingOut
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateLoggingOut:
		return "logging_out"
	default:
		return "unauthenticated"
	}
}

// Default tuning values. The revalidation interval must stay well under the
// margin so the background check fires before a token crosses into its
// margin window.
const (
	DefaultMargin             = 30 * time.Minute
	DefaultRevalidateInterval = 5 * time.Minute
	DefaultExchangeTimeout    = 15 * time.Second
)

// Config tunes a Manager. Zero values fall back to the defaults above.
type Config struct {
	// Margin is the safety window subtracted from a token's expiry when
	// deciding whether it is still usable. One authoritative margin is used
	// for the startup check, the background revalidator and everything else.
	Margin time.Duration

	// RevalidateInterval is the background revalidator tick period.
	RevalidateInterval time.Duration

	// ExchangeTimeout bounds the refresh-exchange and revocation calls.
	ExchangeTimeout time.Duration

	// HTTPClient executes guarded requests. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Manager is the session lifecycle controller. It exclusively owns the
// credential store and session state; every other component reads through
// it and submits mutations via Login, refresh or Logout rather than writing
// directly.
type Manager struct {
	tokens TokenService
	store  CredentialStore
	http   *http.Client
	log    *slog.Logger

	margin          time.Duration
	revalidateEvery time.Duration
	exchangeTimeout time.Duration

	sf singleflight.Group

	mu       sync.RWMutex
	state    State
	gen      uint64
	pair     Pair
	identity *jwtx.Identity
	sessCtx  context.Context
	sessStop context.CancelFunc

	subMu sync.Mutex
	subs  []chan Event
}

// New wires a Manager to its identity-provider surface and credential store.
func New(tokens TokenService, store CredentialStore, cfg Config) *Manager {
	if cfg.Margin <= 0 {
		cfg.Margin = DefaultMargin
	}
	if cfg.RevalidateInterval <= 0 {
		cfg.RevalidateInterval = DefaultRevalidateInterval
	}
	if cfg.ExchangeTimeout <= 0 {
		cfg.ExchangeTimeout = DefaultExchangeTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Manager{
		tokens:          tokens,
		store:           store,
		http:            cfg.HTTPClient,
		log:             cfg.Logger,
		margin:          cfg.Margin,
		revalidateEvery: cfg.RevalidateInterval,
		exchangeTimeout: cfg.ExchangeTimeout,
	}
}

// Login seeds the session from credential material produced by the login
// flow. It is the only entry point that populates the credential store from
// outside the package. Fails with InvalidCredentialError when the access
// token cannot be decoded; otherwise the session always reaches
// StateAuthenticated.
func (m *Manager) Login(accessToken, refreshToken string) error {
	ident, err := jwtx.IdentityOf(accessToken)
	if err != nil {
		return &InvalidCredentialError{Err: err}
	}

	pair := Pair{AccessToken: accessToken, RefreshToken: refreshToken}

	m.mu.Lock()
	m.state = StateAuthenticating
	m.activateLocked(pair, ident)
	// Persisted inside the critical section so a teardown racing this login
	// cannot clear the store and then lose to this write.
	if err := m.store.Save(pair); err != nil {
		m.log.Warn("persisting credentials failed", "error", err)
	}
	m.mu.Unlock()

	m.notify(Event{Kind: EventStarted})
	m.log.Info("session started", "subject", ident.Subject, "role", ident.Role)
	return nil
}

// Resume restores a persisted session at startup. A still-usable token
// resumes directly with no network call; an expired token with a refresh
// token triggers exactly one exchange. On any failure the store is cleared
// and the session stays Unauthenticated. A session already active is
// replaced quietly, the same way Login replaces one. Returns whether a
// session is now active.
func (m *Manager) Resume(ctx context.Context) (bool, error) {
	pair, err := m.store.Load()
	if err != nil {
		return false, err
	}
	if pair.IsZero() {
		return false, nil
	}

	if jwtx.IsUsable(pair.AccessToken, m.margin) {
		ident, err := jwtx.IdentityOf(pair.AccessToken)
		if err == nil {
			m.mu.Lock()
			m.activateLocked(pair, ident)
			m.mu.Unlock()

			m.notify(Event{Kind: EventStarted})
			m.log.Info("session resumed", "subject", ident.Subject)
			return true, nil
		}
		// Undecodable persisted token: fall through to the refresh path so
		// startup and mid-session decode failures end the same way.
	}

	if pair.RefreshToken == "" {
		_ = m.store.Clear()
		return false, &RefreshError{Reason: "stored token stale and no refresh token held"}
	}

	cctx, cancel := context.WithTimeout(ctx, m.exchangeTimeout)
	defer cancel()

	fresh, err := m.tokens.ExchangeRefresh(cctx, pair.RefreshToken)
	if err != nil {
		_ = m.store.Clear()
		return false, &RefreshError{Reason: "startup refresh exchange failed", Err: err}
	}

	ident, err := jwtx.IdentityOf(fresh.AccessToken)
	if err != nil {
		_ = m.store.Clear()
		return false, &RefreshError{Reason: "refreshed token undecodable", Err: err}
	}

	m.mu.Lock()
	m.activateLocked(fresh, ident)
	if err := m.store.Save(fresh); err != nil {
		m.log.Warn("persisting refreshed credentials failed", "error", err)
	}
	m.mu.Unlock()

	m.notify(Event{Kind: EventStarted})
	m.log.Info("session resumed after refresh", "subject", ident.Subject)
	return true, nil
}

// activateLocked installs a credential pair and starts the background
// revalidator, replacing any session already active. Each activation bumps
// the session generation so a teardown of an earlier session cannot clobber
// this one after the fact. Caller holds m.mu.
func (m *Manager) activateLocked(pair Pair, ident *jwtx.Identity) {
	if m.sessStop != nil {
		// Replace the existing session quietly. Waiters on the old session
		// see a cancellation, not a logout notification, and its revalidator
		// exits with its context.
		m.sessStop()
		m.sf.Forget(refreshFlightKey)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.gen++
	m.sessCtx, m.sessStop = ctx, cancel
	m.pair = pair
	m.identity = ident
	m.state = StateAuthenticated

	go m.revalidate(ctx)
}

// Logout ends the session at the user's request. The refresh token is
// revoked server-side on a best-effort basis; a revocation failure is
// logged and client-side teardown proceeds regardless. Calling Logout while
// already unauthenticated is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.teardown(ctx, "", true)
	return nil
}

// ForceLogout ends the session without user involvement, carrying a
// human-readable reason for the UI. Invoked by the refresh path and the
// background revalidator when a credential cannot be extended.
func (m *Manager) ForceLogout(reason string) {
	m.teardown(context.Background(), reason, false)
}

func (m *Manager) teardown(ctx context.Context, reason string, userInitiated bool) {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	m.state = StateLoggingOut
	gen := m.gen
	stop := m.sessStop
	pair := m.pair
	m.pair = Pair{}
	m.identity = nil
	m.sessCtx, m.sessStop = nil, nil
	m.mu.Unlock()

	// Stops the revalidator and releases any refresh waiters with a
	// cancellation. An exchange already on the wire completes or fails
	// normally, but its result is discarded.
	stop()
	m.sf.Forget(refreshFlightKey)

	if userInitiated && pair.RefreshToken != "" {
		rctx, cancel := context.WithTimeout(ctx, m.exchangeTimeout)
		if err := m.tokens.RevokeRefresh(rctx, pair.RefreshToken); err != nil {
			m.log.Warn("refresh token revocation failed", "error", err)
		}
		cancel()
	}

	m.mu.Lock()
	if m.gen != gen {
		// A new login replaced the session while revocation was in flight.
		// The new session stands; its store entry and state are not ours to
		// touch.
		m.mu.Unlock()
		m.log.Debug("teardown superseded by a newer session")
		return
	}
	if err := m.store.Clear(); err != nil {
		m.log.Warn("clearing credential store failed", "error", err)
	}
	m.state = StateUnauthenticated
	m.mu.Unlock()

	m.notify(Event{Kind: EventEnded, Reason: reason, UserInitiated: userInitiated})
	m.log.Info("session ended", "reason", reason, "user_initiated", userInitiated)
}

// Close releases the Manager at process teardown: the revalidator stops and
// pending refresh waiters receive a cancellation. The persisted pair is NOT
// cleared, so the next start resumes the session.
func (m *Manager) Close() {
	m.mu.Lock()
	stop := m.sessStop
	m.sessCtx, m.sessStop = nil, nil
	m.pair = Pair{}
	m.identity = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
	m.sf.Forget(refreshFlightKey)
}

// CurrentIdentity returns the last successfully decoded identity, or nil
// when unauthenticated. Never performs I/O or triggers a refresh.
func (m *Manager) CurrentIdentity() *jwtx.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}
