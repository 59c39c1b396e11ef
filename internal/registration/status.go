// Package registration implements the conversational registration workflow:
// a per-session state machine that accumulates profile fields from chat
// turns, asks for confirmation, and commits a user record exactly once.
package registration

// Status is the lifecycle state of a registration session.
type Status string

const (
	StatusInitialized    Status = "initialized"
	StatusGatheringInfo  Status = "gathering_info"
	StatusPasswordNeeded Status = "password_needed"
	StatusConfirming     Status = "confirming"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

// IsTerminal reports whether no further status transition may occur.
// Terminal sessions remain readable but the state machine short-circuits
// re-entry.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
