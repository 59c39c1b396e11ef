package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres implements Store on top of PostgreSQL via sqlx.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres opens a connection pool and verifies connectivity.
func NewPostgres(connString string) (*Postgres, error) {
	db, err := sqlx.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if pingErr := db.Ping(); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing connection, used by tests with sqlmock.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: sqlx.NewDb(db, "postgres")}
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// InitDB creates the users and sessions tables if they do not exist.
func (p *Postgres) InitDB(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id       TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL,
			phone         TEXT NOT NULL,
			address       TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		// Email uniqueness is case-insensitive.
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id    TEXT,
			data       JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// CreateSession inserts an empty session row and returns its id.
func (p *Postgres) CreateSession(ctx context.Context) (string, error) {
	sessionID := newID("session")
	now := time.Now().UTC()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, data, created_at, updated_at)
		 VALUES ($1, NULL, '{}', $2, $2)`,
		sessionID, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return sessionID, nil
}

// LoadSession returns the stored snapshot or ErrNotFound.
func (p *Postgres) LoadSession(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	var raw []byte
	err := p.db.QueryRowxContext(ctx,
		`SELECT data FROM sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode session data: %w", err)
	}
	if snap.SessionID == "" {
		// Freshly created row with an empty data document.
		snap.SessionID = sessionID
	}
	return &snap, nil
}

// SaveSession upserts the session snapshot as a JSONB document.
func (p *Postgres) SaveSession(ctx context.Context, sessionID string, snap *SessionSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}

	var userID *string
	if snap.UserID != "" {
		userID = &snap.UserID
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id)
		 DO UPDATE SET user_id = $2, data = $3, updated_at = $5`,
		sessionID, userID, raw, snap.CreatedAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// CreateUser inserts a registration record. The unique index on
// LOWER(email) makes the uniqueness check and the insert a single atomic
// operation; a violation maps to ErrDuplicateEmail.
func (p *Postgres) CreateUser(ctx context.Context, rec *UserRecord) (string, error) {
	if rec.UserID == "" {
		rec.UserID = newID("user")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO users (user_id, name, email, phone, address, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.UserID, rec.Name, rec.Email, rec.Phone, rec.Address, rec.PasswordHash, rec.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrDuplicateEmail
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return rec.UserID, nil
}

// GetUserByID returns a user record or ErrNotFound.
func (p *Postgres) GetUserByID(ctx context.Context, userID string) (*UserRecord, error) {
	return p.getUser(ctx,
		`SELECT user_id, name, email, phone, address, password_hash, created_at
		 FROM users WHERE user_id = $1`, userID)
}

// GetUserByEmail returns a user record or ErrNotFound. Lookup matches the
// uniqueness semantics: case-insensitive.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return p.getUser(ctx,
		`SELECT user_id, name, email, phone, address, password_hash, created_at
		 FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (p *Postgres) getUser(ctx context.Context, query, arg string) (*UserRecord, error) {
	var rec UserRecord
	if err := p.db.GetContext(ctx, &rec, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &rec, nil
}
