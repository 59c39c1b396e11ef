// Package cli defines the cobra commands for the registration assistant.
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/asadrizvi64/agentic-voice/internal/agent"
	"github.com/asadrizvi64/agentic-voice/internal/config"
	"github.com/asadrizvi64/agentic-voice/internal/extract"
	"github.com/asadrizvi64/agentic-voice/internal/registration"
	"github.com/asadrizvi64/agentic-voice/internal/store"
)

// RootCommand builds the root command with all subcommands attached.
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentic-voice",
		Short: "Conversational registration assistant",
		Long: `A conversational assistant that collects user registration details
(name, email, phone, address, password) from free-text chat turns,
confirms them, and persists the finished registration.`,
		SilenceUsage: true,
	}

	root.AddCommand(ServeCommand())
	root.AddCommand(ChatCommand())
	root.AddCommand(InitDBCommand())

	return root
}

// buildEngine wires the store, optional Gemini agent, extractor and
// renderer into a registration engine. The returned cleanup must be called
// on shutdown.
func buildEngine(ctx context.Context) (*registration.Engine, func(), error) {
	st, err := store.New(config.GetStoreConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	if config.IsMemoryMode() {
		fmt.Println("Running with in-memory store")
	} else {
		fmt.Println("Running with PostgreSQL store")
	}

	aiAgent, err := agent.NewAgent(ctx, config.GetAPIKey(), config.GetLLMTimeout())
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("failed to initialize AI agent: %w", err)
	}

	var extractor *extract.Extractor
	var renderer *registration.Renderer
	if aiAgent != nil {
		extractor = extract.NewWithGenerator(aiAgent)
		renderer = registration.NewRenderer(aiAgent)
	} else {
		log.Println("No Gemini API key configured; using deterministic extraction and replies")
		extractor = extract.New()
		renderer = registration.NewRenderer(nil)
	}

	engine := registration.NewEngine(st, extractor, renderer)

	cleanup := func() {
		aiAgent.Close()
		if cerr := st.Close(); cerr != nil {
			log.Printf("warning: failed to close store: %v", cerr)
		}
	}
	return engine, cleanup, nil
}
