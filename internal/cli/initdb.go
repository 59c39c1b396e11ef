package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asadrizvi64/agentic-voice/internal/config"
	"github.com/asadrizvi64/agentic-voice/internal/store"
)

// InitDBCommand creates the init-db command that sets up the database
// schema.
func InitDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the users and sessions tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.New(config.GetStoreConfig())
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			defer st.Close()

			if err := st.InitDB(cmd.Context()); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			fmt.Println("Database initialized successfully.")
			return nil
		},
	}
}
