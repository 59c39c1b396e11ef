package registration

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerAddAcquireRemove(t *testing.T) {
	m := NewManager()
	m.Add(NewSession("session_a"))
	m.Add(NewSession("session_b"))
	assert.Equal(t, 2, m.Count())
	assert.ElementsMatch(t, []string{"session_a", "session_b"}, m.List())

	s, release, err := m.Acquire("session_a")
	require.NoError(t, err)
	assert.Equal(t, "session_a", s.SessionID)
	release()

	_, _, err = m.Acquire("session_missing")
	assert.Error(t, err)

	m.Remove("session_a")
	assert.Equal(t, 1, m.Count())
	_, ok := m.Peek("session_a")
	assert.False(t, ok)
}

func TestManagerSerializesTurnsPerSession(t *testing.T) {
	m := NewManager()
	m.Add(NewSession("session_a"))

	// Each goroutine read-modify-writes an unguarded counter while holding
	// the session lock. Any interleaving loses increments.
	const turns = 100
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release, err := m.Acquire("session_a")
			if err != nil {
				return
			}
			defer release()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, turns, counter)
}

func TestManagerCleanupExpired(t *testing.T) {
	m := NewManager()
	stale := NewSession("session_stale")
	stale.LastUsed = time.Now().Add(-2 * time.Hour)
	m.Add(stale)
	m.Add(NewSession("session_fresh"))

	removed := m.CleanupExpired(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"session_fresh"}, m.List())

	_, ok := m.Peek("session_stale")
	assert.False(t, ok)
}
