package registration

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/asadrizvi64/agentic-voice/internal/extract"
	"github.com/asadrizvi64/agentic-voice/internal/profile"
	"github.com/asadrizvi64/agentic-voice/internal/store"
)

// EntityExtractor turns a raw message into profile fields. Implementations
// must be total: no match means an empty result, never an error.
type EntityExtractor interface {
	ExtractWithFallback(ctx context.Context, text string) profile.Profile
}

// confirmationTokens trigger commit when found (case-insensitive substring)
// in a message while the session is confirming.
var confirmationTokens = []string{"yes", "correct", "confirm", "ok"}

// Engine drives the registration workflow. One ProcessMessage call handles
// one turn; the Manager guarantees per-session serialization.
type Engine struct {
	store     store.Store
	manager   *Manager
	extractor EntityExtractor
	renderer  *Renderer
}

// NewEngine wires the engine with its collaborators.
func NewEngine(st store.Store, ex EntityExtractor, r *Renderer) *Engine {
	return &Engine{
		store:     st,
		manager:   NewManager(),
		extractor: ex,
		renderer:  r,
	}
}

// Manager exposes the engine's session manager, for cleanup scheduling.
func (e *Engine) Manager() *Manager {
	return e.manager
}

// TurnResult is the outcome of one processed message.
type TurnResult struct {
	SessionID     string   `json:"session_id"`
	Message       string   `json:"message"`
	Status        Status   `json:"status"`
	UserID        string   `json:"user_id,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// CreateSession allocates a session in the store and registers it live.
func (e *Engine) CreateSession(ctx context.Context) (string, error) {
	sessionID, err := e.store.CreateSession(ctx)
	if err != nil {
		return "", err
	}
	e.manager.Add(NewSession(sessionID))
	return sessionID, nil
}

// GetSession returns the current snapshot of a session, preferring the live
// in-memory state over the stored one. The per-session lock is held while
// snapshotting so a concurrent turn cannot mutate the session mid-read.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*store.SessionSnapshot, error) {
	if s, release, err := e.manager.Acquire(sessionID); err == nil {
		defer release()
		return s.Snapshot(), nil
	}
	return e.store.LoadSession(ctx, sessionID)
}

// ProcessMessage runs one turn for the given session. An unknown session id
// is first looked up in the store; if it is not there either, a fresh
// session is created, matching the forgiving behavior of the conversation
// endpoint contract.
func (e *Engine) ProcessMessage(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	s, release, err := e.manager.Acquire(sessionID)
	if err != nil {
		s, release, err = e.resurrect(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}
	defer release()

	reply := e.handleTurn(ctx, s, message)

	result := &TurnResult{
		SessionID: s.SessionID,
		Message:   reply,
		Status:    s.Status,
	}
	if s.Status == StatusCompleted {
		result.UserID = s.Profile[profile.FieldUserID]
	}
	if len(s.MissingFields) > 0 {
		result.MissingFields = profile.FieldNames(s.MissingFields)
	}
	return result, nil
}

// resurrect restores a session from the store, or creates a new one when
// the id is unknown everywhere.
func (e *Engine) resurrect(ctx context.Context, sessionID string) (*Session, func(), error) {
	if snap, err := e.store.LoadSession(ctx, sessionID); err == nil {
		e.manager.Add(Restore(snap))
		return e.manager.Acquire(sessionID)
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("registration: loading session %s: %v", sessionID, err)
	}

	newID, err := e.CreateSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	return e.manager.Acquire(newID)
}

// handleTurn runs the fixed five-stage pipeline: extract, validate, decide,
// maybe commit, render and persist. A panic anywhere forces the session to
// failed rather than leaving it half-updated.
func (e *Engine) handleTurn(ctx context.Context, s *Session, message string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("registration: turn panicked for session %s: %v", s.SessionID, r)
			if !s.Status.IsTerminal() {
				s.Status = StatusFailed
			}
			reply = apologeticReply
			s.LastSystemMessage = reply
			e.persist(ctx, s)
		}
	}()

	s.LastMessage = message

	// Terminal sessions only re-render; no state transition, no second
	// commit.
	if s.Status.IsTerminal() {
		reply = e.renderer.Render(ctx, s)
		s.LastSystemMessage = reply
		e.persist(ctx, s)
		return reply
	}

	// A view-profile request reports what has been collected so far
	// without advancing the flow.
	if intent, _ := extract.DetectIntent(message); intent == extract.IntentView {
		reply = e.renderer.Summary(s)
		s.LastSystemMessage = reply
		e.persist(ctx, s)
		return reply
	}

	// Stage 1: extract entities and merge them into the profile. The
	// password is routed separately.
	entities := e.extractor.ExtractWithFallback(ctx, message)
	for field, value := range entities {
		if field == profile.FieldPassword {
			s.Password = value
			continue
		}
		s.Profile[field] = value
	}

	// Stage 2: recompute missing fields from scratch.
	_, missing := profile.Validate(s.Profile)
	s.MissingFields = missing

	// Stage 3: decide status.
	switch {
	case len(missing) > 0:
		s.Status = StatusGatheringInfo
	case s.Password == "":
		s.Status = StatusPasswordNeeded
	default:
		s.Status = StatusConfirming
	}

	// Stage 4: commit once on confirmation. Commit moves the session to a
	// terminal status, so a repeated confirmation can never fire twice.
	if s.Status == StatusConfirming && containsConfirmation(message) {
		e.commit(ctx, s)
	}

	// Stage 5: render and persist.
	reply = e.renderer.Render(ctx, s)
	s.LastSystemMessage = reply
	e.persist(ctx, s)
	return reply
}

// commit hashes the password, builds the user record and submits it to the
// store. Success completes the session; duplicate email or a store error
// fails it with a reason for rendering.
func (e *Engine) commit(ctx context.Context, s *Session) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("registration: hashing password for session %s: %v", s.SessionID, err)
		s.Status = StatusFailed
		s.FailureReason = "could not process your password"
		return
	}

	rec := &store.UserRecord{
		Name:         s.Profile[profile.FieldName],
		Email:        s.Profile[profile.FieldEmail],
		Phone:        s.Profile[profile.FieldPhone],
		Address:      s.Profile[profile.FieldAddress],
		PasswordHash: string(hash),
	}

	userID, err := e.store.CreateUser(ctx, rec)
	if err != nil {
		s.Status = StatusFailed
		if errors.Is(err, store.ErrDuplicateEmail) {
			s.FailureReason = "email already exists"
		} else {
			log.Printf("registration: creating user for session %s: %v", s.SessionID, err)
			s.FailureReason = "could not save your registration"
		}
		return
	}

	s.Status = StatusCompleted
	s.Profile[profile.FieldUserID] = userID
	s.Password = ""
}

// persist saves the session snapshot. Store errors are logged, not
// surfaced: a failed save must not break the turn.
func (e *Engine) persist(ctx context.Context, s *Session) {
	if err := e.store.SaveSession(ctx, s.SessionID, s.Snapshot()); err != nil {
		log.Printf("registration: saving session %s: %v", s.SessionID, err)
	}
}

func containsConfirmation(message string) bool {
	lower := strings.ToLower(message)
	for _, token := range confirmationTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
