// Package agent wraps the Gemini client used as the optional
// text-generation service for extraction fallback and response phrasing.
package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultTimeout bounds every generation call so a slow or unreachable
// service never blocks turn completion.
const DefaultTimeout = 8 * time.Second

// Agent wraps the Gemini client and model. A nil *Agent is a valid
// "not configured" value: Generate on it returns an error and callers
// fall back to deterministic behavior.
type Agent struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewAgent initializes the Gemini client. If the API key is empty, the
// caller receives a nil Agent and no error so that commands can decide how
// to handle missing configuration.
func NewAgent(ctx context.Context, apiKey string, timeout time.Duration) (*Agent, error) {
	if apiKey == "" {
		return nil, nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.5-flash-preview-09-2025")

	return &Agent{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Close releases underlying resources.
func (a *Agent) Close() {
	if a == nil || a.client == nil {
		return
	}
	if err := a.client.Close(); err != nil {
		log.Printf("warning: failed to close Gemini client: %v", err)
	}
}

// Generate sends a prompt to the model and returns its text reply. The call
// is bounded by the configured timeout.
func (a *Agent) Generate(ctx context.Context, prompt string) (string, error) {
	if a == nil || a.model == nil {
		return "", fmt.Errorf("text-generation agent is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from agent: %v", resp)
	}

	part := resp.Candidates[0].Content.Parts[0]
	textPart, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from agent: %T", part)
	}

	return string(textPart), nil
}
