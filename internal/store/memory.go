package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store used for tests and local demos. All methods
// take a single lock, so insert-unique-by-email is atomic.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*SessionSnapshot
	users    map[string]*UserRecord
	emails   map[string]string // lowercased email -> user id
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*SessionSnapshot),
		users:    make(map[string]*UserRecord),
		emails:   make(map[string]string),
	}
}

// Close is a no-op for the memory store.
func (m *Memory) Close() error { return nil }

// InitDB is a no-op for the memory store.
func (m *Memory) InitDB(ctx context.Context) error { return nil }

// CreateSession registers a new empty session snapshot.
func (m *Memory) CreateSession(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessionID := newID("session")
	now := time.Now().UTC()
	m.sessions[sessionID] = &SessionSnapshot{
		SessionID: sessionID,
		Profile:   map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return sessionID, nil
}

// LoadSession returns a copy of the stored snapshot or ErrNotFound.
func (m *Memory) LoadSession(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSnapshot(snap), nil
}

// SaveSession stores a copy of the snapshot.
func (m *Memory) SaveSession(ctx context.Context, sessionID string, snap *SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneSnapshot(snap)
	stored.SessionID = sessionID
	stored.UpdatedAt = time.Now().UTC()
	m.sessions[sessionID] = stored
	return nil
}

// CreateUser inserts a user record, enforcing email uniqueness under the
// store lock.
func (m *Memory) CreateUser(ctx context.Context, rec *UserRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(rec.Email)
	if _, exists := m.emails[key]; exists {
		return "", ErrDuplicateEmail
	}

	stored := *rec
	if stored.UserID == "" {
		stored.UserID = newID("user")
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	m.users[stored.UserID] = &stored
	m.emails[key] = stored.UserID
	return stored.UserID, nil
}

// GetUserByID returns a copy of the user record or ErrNotFound.
func (m *Memory) GetUserByID(ctx context.Context, userID string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rec
	return &out, nil
}

// GetUserByEmail returns a copy of the user record or ErrNotFound.
func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *m.users[userID]
	return &out, nil
}

func cloneSnapshot(snap *SessionSnapshot) *SessionSnapshot {
	out := *snap
	out.Profile = make(map[string]string, len(snap.Profile))
	for k, v := range snap.Profile {
		out.Profile[k] = v
	}
	if snap.MissingFields != nil {
		out.MissingFields = append([]string(nil), snap.MissingFields...)
	}
	return &out
}
