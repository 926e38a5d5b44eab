package chat

import (
	"sync"
)

// ConnManager is the shared connection registry: user id -> the single
// currently-active session. It is the only broadly shared mutable structure
// in the gateway; every operation is atomic per key and safe for arbitrary
// concurrent callers.
type ConnManager struct {
	mu     sync.RWMutex
	byUser map[int64]*Session
	gwID   string
}

func NewConnManager(gwID string) *ConnManager {
	return &ConnManager{
		byUser: make(map[int64]*Session),
		gwID:   gwID,
	}
}

func (m *ConnManager) GwID() string { return m.gwID }

// Register inserts or replaces the mapping for the user and returns the
// superseded session, if any. Last connect wins; the caller decides whether
// to forcibly close the previous session.
func (m *ConnManager) Register(userID int64, s *Session) (prev *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev = m.byUser[userID]
	m.byUser[userID] = s
	if prev == s {
		return nil
	}
	return prev
}

// Unregister removes the mapping only if the registered session is still the
// caller's session, so a late teardown never removes a newer session.
func (m *ConnManager) Unregister(userID int64, s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.byUser[userID]; ok && cur == s {
		delete(m.byUser, userID)
		return true
	}
	return false
}

func (m *ConnManager) Lookup(userID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byUser[userID]
	return s, ok
}

// Snapshot returns a point-in-time view of all registered sessions for
// broadcast. It may miss a session joining mid-call or include one about to
// leave; broadcast tolerates both.
func (m *ConnManager) Snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.byUser))
	for _, s := range m.byUser {
		out = append(out, s)
	}
	return out
}

func (m *ConnManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byUser)
}

// Close closes every registered session and empties the registry.
func (m *ConnManager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.byUser))
	for _, s := range m.byUser {
		sessions = append(sessions, s)
	}
	m.byUser = make(map[int64]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
