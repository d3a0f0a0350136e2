package credstore

import (
	"sync"

	"github.com/foliodocs/folio/pkg/session"
)

// Memory is an in-memory session.CredentialStore for tests and for running
// without durable state (the session then dies with the process).
type Memory struct {
	mu   sync.Mutex
	pair session.Pair
	set  bool
}

var _ session.CredentialStore = (*Memory)(nil)

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(pair session.Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	m.set = true
	return nil
}

func (m *Memory) Load() (session.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return session.Pair{}, nil
	}
	return m.pair, nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = session.Pair{}
	m.set = false
	return nil
}
