package chat

import (
	"strings"
	"time"
)

// Role identifies who produced a transcript message.
type Role string

const (
	// RoleUser marks a message typed by the operator.
	RoleUser Role = "user"
	// RoleAgent marks a streamed assistant response.
	RoleAgent Role = "agent"
)

// Message is one finalized transcript entry. Text accumulates
// append-only while a turn streams and is frozen once the turn
// finalizes; finalized messages are never mutated afterwards.
type Message struct {
	ID        string      `json:"id,omitempty"`
	Role      Role        `json:"role"`
	Text      string      `json:"text"`
	Citations []string    `json:"citations,omitempty"`
	Trace     []TraceItem `json:"trace,omitempty"`
}

// SessionSummary describes one server-side chat session as returned by
// the session list endpoint.
type SessionSummary struct {
	ID        string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is the locally persisted engine state: the transcript plus
// the active session identity. One engine instance owns exactly one
// snapshot slot, fully overwritten on every mutation.
type Snapshot struct {
	Messages           []Message `json:"messages"`
	SessionID          string    `json:"session_id"`
	ActiveSessionTitle string    `json:"active_session_title"`
}

// SnapshotStore persists and restores the engine snapshot across
// restarts. Load reports ok=false for a missing or unreadable
// snapshot; corruption must never fail engine start-up.
type SnapshotStore interface {
	Save(snapshot Snapshot) error
	Load() (Snapshot, bool)
	Clear() error
}

const defaultSessionTitle = "New conversation"

// DeriveTitle builds a session title from the first user prompt,
// truncated to a displayable length.
func DeriveTitle(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return defaultSessionTitle
	}

	const maxTitleLength = 120
	if len(trimmed) <= maxTitleLength {
		return trimmed
	}

	return trimmed[:maxTitleLength]
}
