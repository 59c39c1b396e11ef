package registration

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/asadrizvi64/agentic-voice/internal/profile"
)

// Generator is the optional text-generation service used to rephrase
// replies more naturally. Every status has a deterministic fallback, so a
// missing or failing generator never blocks a turn.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const greeting = "Hello! I'm here to help you with your registration. What would you like to do today?"

const apologeticReply = "I'm sorry, but there was a problem with your registration. Please try again."

// Renderer turns session state into user-facing text.
type Renderer struct {
	generator Generator
}

// NewRenderer creates a renderer. A nil generator disables enhancement.
func NewRenderer(g Generator) *Renderer {
	return &Renderer{generator: g}
}

// Render produces the reply for the session's current state. When a
// generator is configured its output is validated before being trusted; on
// any doubt the deterministic template wins.
func (r *Renderer) Render(ctx context.Context, s *Session) string {
	fallback := r.template(s)
	if r.generator == nil {
		return fallback
	}

	enhanced, err := r.generator.Generate(ctx, r.enhancementPrompt(s, fallback))
	if err != nil {
		log.Printf("render: enhancement failed, using deterministic reply: %v", err)
		return fallback
	}
	enhanced = strings.TrimSpace(enhanced)
	if enhanced == "" {
		return fallback
	}

	// The confirmation reply must surface every collected field verbatim;
	// an enhancement that drops one is discarded.
	if s.Status == StatusConfirming && !containsAllFields(enhanced, s.Profile) {
		log.Printf("render: enhanced confirmation omitted profile fields, using deterministic reply")
		return fallback
	}
	return enhanced
}

// Summary reports the profile collected so far, for view-profile requests.
// It never includes the password.
func (r *Renderer) Summary(s *Session) string {
	collected := make([]profile.Field, 0, len(profile.RequiredFields))
	for _, f := range profile.RequiredFields {
		if s.Profile[f] != "" {
			collected = append(collected, f)
		}
	}
	if len(collected) == 0 {
		return "I don't have any of your information yet. " + greeting
	}

	var b strings.Builder
	b.WriteString("Here's what I have so far:\n")
	for _, f := range collected {
		fmt.Fprintf(&b, "%s: %s\n", f, s.Profile[f])
	}
	if len(s.MissingFields) > 0 {
		fmt.Fprintf(&b, "\nI still need your %s.", strings.Join(profile.FieldNames(s.MissingFields), ", "))
	}
	return b.String()
}

func (r *Renderer) template(s *Session) string {
	switch s.Status {
	case StatusGatheringInfo:
		if len(s.MissingFields) > 0 {
			missing := strings.Join(profile.FieldNames(s.MissingFields), ", ")
			return fmt.Sprintf("I still need your %s to complete your registration. Could you please provide this information?", missing)
		}
		return "Thank you for the information. Is there anything else you'd like to add before we complete your registration?"

	case StatusPasswordNeeded:
		return "Please provide a password for your account to complete the registration."

	case StatusConfirming:
		var b strings.Builder
		b.WriteString("Here's the information you've provided:\n")
		for _, f := range profile.RequiredFields {
			fmt.Fprintf(&b, "%s: %s\n", f, s.Profile[f])
		}
		b.WriteString("\nIs this correct? Say yes to complete your registration.")
		return b.String()

	case StatusCompleted:
		return fmt.Sprintf("Great! Your registration has been successfully completed. Your user ID is %s.", s.Profile[profile.FieldUserID])

	case StatusFailed:
		if s.FailureReason != "" {
			return fmt.Sprintf("Registration failed: %s", s.FailureReason)
		}
		return apologeticReply
	}

	return greeting
}

func (r *Renderer) enhancementPrompt(s *Session, fallback string) string {
	var b strings.Builder
	b.WriteString("You are a friendly registration assistant. Rephrase the reply below in a natural, concise way.\n")
	b.WriteString("Respond with the reply text only, no preamble and no markdown.\n")
	if s.Status == StatusConfirming {
		b.WriteString("You MUST include every one of these values verbatim: ")
		for i, f := range profile.RequiredFields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.Profile[f])
		}
		b.WriteString(".\n")
	}
	fmt.Fprintf(&b, "Reply to rephrase: %q", fallback)
	return b.String()
}

func containsAllFields(text string, p profile.Profile) bool {
	for _, f := range profile.RequiredFields {
		if v := p[f]; v != "" && !strings.Contains(text, v) {
			return false
		}
	}
	return true
}
