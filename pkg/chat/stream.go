package chat

import (
	"context"
	"strings"
)

// StreamEvent is one typed event received from the chat stream. The
// Type field discriminates which of the remaining fields are set.
type StreamEvent struct {
	Type string // "token" | "trace" | "meta" | "done" | "error"

	// Token fields.
	Delta     string
	MessageID string

	// Trace fields.
	Trace TraceItem

	// Meta fields. MetaSessionID is the one label the engine adopts.
	Label string
	Value string

	// Done fields. When the terminal event carries its own trace, it
	// takes precedence over the accumulated per-turn trace.
	Citations []string
	DoneTrace []TraceItem

	// Error field for connection-level failures.
	Err error
}

// Stream event types emitted by the upstream SSE endpoint.
const (
	EventToken = "token"
	EventTrace = "trace"
	EventMeta  = "meta"
	EventDone  = "done"
	EventError = "error"
)

// MetaSessionID is the meta event label carrying the server-assigned
// session id.
const MetaSessionID = "session_id"

// Streamer is the collaborator contract for opening one streamed chat
// turn. The returned channel is single-consumer and delivers events in
// arrival order; it terminates with a done or error event and is then
// closed. Canceling the context tears the connection down.
type Streamer interface {
	OpenStream(ctx context.Context, message string, sessionID string) (<-chan StreamEvent, error)
}

// streamState is the ephemeral per-turn accumulator. It exists only
// while one turn's response is in flight and is merged into a
// finalized Message on completion or error, or discarded on Stop.
// Events are matched to their turn by pointer identity, so late
// arrivals from a stopped turn can never touch the current one.
type streamState struct {
	cancel    context.CancelFunc
	buf       strings.Builder
	trace     traceLog
	messageID string
}
