package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/asadrizvi64/agentic-voice/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.RootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
