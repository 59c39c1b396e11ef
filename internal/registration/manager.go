package registration

import (
	"fmt"
	"sync"
	"time"
)

// Manager tracks live sessions and serializes turns per session: a turn
// holds its session's lock for the full pipeline, so no two turns mutate
// the same session concurrently while different sessions proceed in
// parallel.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*managedSession
}

type managedSession struct {
	mu      sync.Mutex
	session *Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*managedSession),
	}
}

// Add registers a session with the manager, replacing any previous entry
// for the same id.
func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = &managedSession{session: s}
}

// Acquire returns the session and a release function after taking its
// per-session lock. Callers must invoke release when the turn is done.
func (m *Manager) Acquire(sessionID string) (*Session, func(), error) {
	m.mu.RLock()
	entry, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("session not found: %s", sessionID)
	}

	entry.mu.Lock()
	entry.session.LastUsed = time.Now()
	return entry.session, entry.mu.Unlock, nil
}

// Peek returns the session without locking it, for read-only access.
func (m *Manager) Peek(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return entry.session, true
}

// List returns all live session ids.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Remove drops a session from the manager.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// CleanupExpired removes sessions idle longer than maxAge and returns how
// many were dropped.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, entry := range m.sessions {
		if now.Sub(entry.session.LastUsed) > maxAge {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
