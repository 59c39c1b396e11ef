package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServeStopsOnContextCancel(t *testing.T) {
	t.Setenv("REG_STORE_TYPE", "memory")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := ServeCommand()
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// Give the listener a moment to start, then signal shutdown.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after context cancellation")
	}
}
