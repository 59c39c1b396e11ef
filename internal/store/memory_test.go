package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemorySessionRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	sessionID, err := m.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	snap, err := m.LoadSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("LoadSession returned error: %v", err)
	}
	if snap.SessionID != sessionID {
		t.Errorf("unexpected session id: %s", snap.SessionID)
	}

	snap.Status = "gathering_info"
	snap.Profile["name"] = "Jane Doe"
	if err := m.SaveSession(ctx, sessionID, snap); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}

	// Mutating the caller's copy after saving must not leak into the store.
	snap.Profile["name"] = "changed"

	loaded, err := m.LoadSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("LoadSession returned error: %v", err)
	}
	if loaded.Status != "gathering_info" {
		t.Errorf("unexpected status: %s", loaded.Status)
	}
	if loaded.Profile["name"] != "Jane Doe" {
		t.Errorf("stored snapshot was aliased: %v", loaded.Profile)
	}

	if _, err := m.LoadSession(ctx, "session_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCreateUserUniqueEmail(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	userID, err := m.CreateUser(ctx, &UserRecord{Name: "Jane Doe", Email: "jane@x.com"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	// Email uniqueness is case-insensitive.
	if _, err := m.CreateUser(ctx, &UserRecord{Name: "Other", Email: "JANE@X.COM"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	rec, err := m.GetUserByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserByID returned error: %v", err)
	}
	if rec.Name != "Jane Doe" {
		t.Errorf("unexpected name: %s", rec.Name)
	}

	rec, err = m.GetUserByEmail(ctx, "Jane@X.com")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if rec.UserID != userID {
		t.Errorf("unexpected user id: %s", rec.UserID)
	}

	if _, err := m.GetUserByID(ctx, "user_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryConcurrentCreateUserSameEmail(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.CreateUser(ctx, &UserRecord{Name: "Jane Doe", Email: "jane@x.com"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicateEmail):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful insert, got %d", succeeded)
	}
}

func TestNewIDFormat(t *testing.T) {
	id := newID("user")
	if len(id) != len("user_")+8 {
		t.Fatalf("unexpected id length: %s", id)
	}
	if id[:5] != "user_" {
		t.Fatalf("unexpected id prefix: %s", id)
	}
	for _, r := range id[5:] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Fatalf("id suffix is not lowercase hex: %s", id)
		}
	}
}
