// Package domain contains core domain types for PromptDesk.
package domain

import (
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single role-tagged message in a conversation transcript.
// Turns are append-only within a session; their order is replayed
// verbatim to the AI gateway on every call.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationState tracks where a prompt-builder conversation is in
// its lifecycle.
type ConversationState string

const (
	// StateIdle means no builder conversation has been started.
	StateIdle ConversationState = "idle"
	// StateSeeded means the transcript holds the system directive and
	// the initial goal but no clarification round has completed yet.
	StateSeeded ConversationState = "seeded"
	// StateAwaitingAnswer means the assistant asked a clarifying
	// question and is waiting for the user's reply.
	StateAwaitingAnswer ConversationState = "awaiting_answer"
	// StateFinalized is terminal; the structured result has been
	// produced and no further turns are accepted.
	StateFinalized ConversationState = "finalized"
)

// Session is the per-browser server-side state. It is created on a
// successful password check, mutated by each builder turn, and
// destroyed on logout or expiry. Never shared across browsers.
type Session struct {
	Token          string            `json:"token"`
	LoggedIn       bool              `json:"logged_in"`
	SelectedApp    string            `json:"selected_app,omitempty"`
	OriginalTask   string            `json:"original_task,omitempty"`
	State          ConversationState `json:"state"`
	Clarifications int               `json:"clarifications"`
	CreatedAt      time.Time         `json:"created_at"`
	LastSeenAt     time.Time         `json:"last_seen_at"`
}

// Expired reports whether the session has been idle longer than ttl.
func (s *Session) Expired(ttl time.Duration) bool {
	return time.Since(s.LastSeenAt) > ttl
}
