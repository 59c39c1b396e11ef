package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/asadrizvi64/agentic-voice/internal/server"
)

// ServeCommand creates the serve command that runs the HTTP API.
func ServeCommand() *cobra.Command {
	var (
		addr       string
		sessionTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registration HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			engine, cleanup, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Drop idle sessions so the manager does not grow without
			// bound. Stored snapshots remain loadable.
			go func() {
				ticker := time.NewTicker(10 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if removed := engine.Manager().CleanupExpired(sessionTTL); removed > 0 {
							log.Printf("serve: cleaned up %d idle sessions", removed)
						}
					}
				}
			}()

			handler := server.NewHandler(engine)
			srv := &http.Server{Addr: addr, Handler: handler.Router()}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Printf("serve: shutdown: %v", err)
				}
			}()

			log.Printf("Starting registration server on %s", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", 24*time.Hour, "Idle time before a live session is evicted")

	return cmd
}
