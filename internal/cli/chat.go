package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asadrizvi64/agentic-voice/internal/registration"
)

// ChatCommand creates the chat command, an interactive terminal session
// with the registration assistant.
func ChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the registration assistant in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			engine, cleanup, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sessionID, err := engine.CreateSession(ctx)
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}

			fmt.Println("System: Hello! I'm here to help you with your registration. What would you like to do today?")
			fmt.Println("(type 'quit' to exit)")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("You: ")
				if !scanner.Scan() {
					break
				}
				message := strings.TrimSpace(scanner.Text())
				if message == "" {
					continue
				}
				if message == "quit" || message == "exit" {
					break
				}

				result, err := engine.ProcessMessage(ctx, sessionID, message)
				if err != nil {
					fmt.Printf("System: something went wrong: %v\n", err)
					continue
				}

				fmt.Printf("System: %s\n", result.Message)
				if result.Status == registration.StatusCompleted || result.Status == registration.StatusFailed {
					break
				}
			}

			return scanner.Err()
		},
	}
}
