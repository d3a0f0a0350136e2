package session

// EventKind discriminates session lifecycle events.
type EventKind int

const (
	// EventStarted fires after a successful login or startup resume.
	EventStarted EventKind = iota

	// EventEnded fires exactly once per teardown, with the reason shown to
	// the user for forced logouts.
	EventEnded
)

// Event is delivered to subscribers on session transitions so the UI layer
// can redirect and display a message without polling session state.
type Event struct {
	Kind          EventKind
	Reason        string
	UserInitiated bool
}

// Subscribe registers an observer for session lifecycle events. The channel
// is buffered; a subscriber that falls behind misses events rather than
// blocking teardown.
func (m *Manager) Subscribe() <-chan Event {
	ch := make(chan Event, 4)

	m.subMu.Lock()
	m.subs = append(m.subs, ch)
	m.subMu.Unlock()

	return ch
}

func (m *Manager) notify(ev Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
