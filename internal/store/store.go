// Package store provides durable persistence for registration sessions and
// committed user records. It exposes one Store interface with a PostgreSQL
// implementation for real deployments and an in-memory implementation for
// tests and local demos.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested session or user does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned by CreateUser when the email is already
// registered. The check and the insert are one atomic operation: two
// concurrent registrations with the same email yield exactly one success.
var ErrDuplicateEmail = errors.New("email already exists")

// UserRecord is the durable registration record created on commit.
// Passwords are stored only as bcrypt hashes.
type UserRecord struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SessionSnapshot is the persisted view of a registration session, saved at
// the end of every turn. The in-flight password is deliberately excluded:
// only its committed hash ever reaches storage.
type SessionSnapshot struct {
	SessionID         string            `json:"session_id"`
	Profile           map[string]string `json:"profile"`
	Status            string            `json:"status"`
	MissingFields     []string          `json:"missing_fields,omitempty"`
	LastMessage       string            `json:"last_message,omitempty"`
	LastSystemMessage string            `json:"last_system_message,omitempty"`
	UserID            string            `json:"user_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Store is the persistence contract the registration engine depends on.
type Store interface {
	CreateSession(ctx context.Context) (string, error)
	LoadSession(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	SaveSession(ctx context.Context, sessionID string, snap *SessionSnapshot) error

	CreateUser(ctx context.Context, rec *UserRecord) (string, error)
	GetUserByID(ctx context.Context, userID string) (*UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)

	InitDB(ctx context.Context) error
	Close() error
}

// Type selects a Store backend.
type Type string

const (
	// PostgresStore uses a real PostgreSQL database.
	PostgresStore Type = "postgres"
	// MemoryStore keeps everything in process memory.
	MemoryStore Type = "memory"
)

// Config holds configuration for store creation.
type Config struct {
	Type             Type
	ConnectionString string
}

// New creates a Store based on configuration.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case PostgresStore:
		return NewPostgres(cfg.ConnectionString)
	case MemoryStore:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
}

// newID generates a short prefixed identifier, e.g. "user_1a2b3c4d".
func newID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + hex[:8]
}
