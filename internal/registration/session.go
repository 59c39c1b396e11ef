package registration

import (
	"time"

	"github.com/asadrizvi64/agentic-voice/internal/profile"
	"github.com/asadrizvi64/agentic-voice/internal/store"
)

// Session holds the mutable state of one registration conversation. It is
// mutated only by the engine, one turn at a time; the Manager serializes
// concurrent turns for the same session id.
type Session struct {
	SessionID string
	Profile   profile.Profile

	// Password is kept outside Profile so it never enters completeness
	// checks or echoed transcripts, and is never persisted in clear.
	Password string

	Status        Status
	MissingFields []profile.Field

	LastMessage       string
	LastSystemMessage string

	// FailureReason records why a session moved to StatusFailed, for
	// rendering.
	FailureReason string

	CreatedAt time.Time
	LastUsed  time.Time
}

// NewSession creates a session in the initialized state.
func NewSession(sessionID string) *Session {
	now := time.Now()
	return &Session{
		SessionID:         sessionID,
		Profile:           make(profile.Profile),
		Status:            StatusInitialized,
		LastSystemMessage: greeting,
		CreatedAt:         now,
		LastUsed:          now,
	}
}

// Snapshot converts the session to its persisted form. The in-flight
// password is deliberately dropped.
func (s *Session) Snapshot() *store.SessionSnapshot {
	prof := make(map[string]string, len(s.Profile))
	for k, v := range s.Profile {
		prof[string(k)] = v
	}

	return &store.SessionSnapshot{
		SessionID:         s.SessionID,
		Profile:           prof,
		Status:            string(s.Status),
		MissingFields:     profile.FieldNames(s.MissingFields),
		LastMessage:       s.LastMessage,
		LastSystemMessage: s.LastSystemMessage,
		UserID:            s.Profile[profile.FieldUserID],
		CreatedAt:         s.CreatedAt.UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
}

// Restore rebuilds a session from its persisted snapshot. A session that
// was saved mid-password-collection comes back without the password and
// re-enters the password_needed flow on its next turn.
func Restore(snap *store.SessionSnapshot) *Session {
	s := &Session{
		SessionID:         snap.SessionID,
		Profile:           make(profile.Profile, len(snap.Profile)),
		Status:            Status(snap.Status),
		LastMessage:       snap.LastMessage,
		LastSystemMessage: snap.LastSystemMessage,
		CreatedAt:         snap.CreatedAt,
		LastUsed:          time.Now(),
	}
	for k, v := range snap.Profile {
		s.Profile[profile.Field(k)] = v
	}
	for _, f := range snap.MissingFields {
		s.MissingFields = append(s.MissingFields, profile.Field(f))
	}
	if s.Status == "" {
		s.Status = StatusInitialized
	}
	return s
}
