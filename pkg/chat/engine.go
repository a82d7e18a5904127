package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/graphlens/dashboard/pkg/logger"
)

var (
	// ErrEmptyMessage is returned when Send is called with no content.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrTurnInFlight is returned when an operation is rejected because
	// a streamed turn is still open.
	ErrTurnInFlight = errors.New("a turn is already streaming")
	// ErrDeletePending is returned when a delete for the same session is
	// already outstanding.
	ErrDeletePending = errors.New("delete already in flight for this session")
)

const emptyResponseText = "No answer"

// SessionStore is the collaborator contract for the server-side session
// store reached over REST.
type SessionStore interface {
	ListSessions(ctx context.Context, limit int) ([]SessionSummary, error)
	GetSession(ctx context.Context, sessionID string) (SessionSummary, []Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// EventObserver receives stream events as the engine applies them, in
// the same order. Observers run on the stream consumer goroutine and
// must not call back into the engine.
type EventObserver func(StreamEvent)

// Engine manages one streamed conversation turn at a time and
// reconciles it into a durable transcript. At most one stream
// connection is open per engine instance; a turn must finalize (done or
// error) or be stopped before the next one starts.
//
// The transcript plus session identity is checkpointed to the snapshot
// store after every mutation and restored once at start-up.
//
// An Engine should be created using NewEngine.
type Engine struct {
	mu sync.Mutex

	streamer  Streamer
	store     SessionStore
	snapshots SnapshotStore

	messages     []Message
	sessionID    string
	sessionTitle string
	sessions     []SessionSummary

	stream *streamState

	pendingDeletes map[string]struct{}
}

// NewEngineParams defines the configuration for creating an Engine.
// Snapshots may be nil, in which case the transcript lives only in
// memory.
type NewEngineParams struct {
	Streamer  Streamer
	Store     SessionStore
	Snapshots SnapshotStore
}

// NewEngine creates a chat session engine and restores the persisted
// snapshot, if a readable one exists.
func NewEngine(params NewEngineParams) *Engine {
	e := &Engine{
		streamer:       params.Streamer,
		store:          params.Store,
		snapshots:      params.Snapshots,
		pendingDeletes: make(map[string]struct{}),
	}

	if e.snapshots != nil {
		if snapshot, ok := e.snapshots.Load(); ok {
			e.messages = snapshot.Messages
			e.sessionID = snapshot.SessionID
			e.sessionTitle = snapshot.ActiveSessionTitle
		}
	}

	return e
}

// Send submits one user message and opens the streamed response turn.
// It is rejected without any state change when the text is empty or
// whitespace-only, or when a turn is already streaming.
//
// The user message is appended optimistically before the connection
// opens. The current session id, if known, is attached to the stream
// request. Observers see every event of this turn in receipt order,
// including the terminal one.
func (e *Engine) Send(ctx context.Context, text string, observers ...EventObserver) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	e.mu.Lock()
	if e.stream != nil {
		e.mu.Unlock()
		return ErrTurnInFlight
	}

	id, err := gonanoid.New()
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("failed to generate message id: %w", err)
	}

	e.messages = append(e.messages, Message{ID: id, Role: RoleUser, Text: trimmed})
	if e.sessionTitle == "" {
		e.sessionTitle = DeriveTitle(trimmed)
	}
	e.persistLocked()

	streamCtx, cancel := context.WithCancel(ctx)
	st := &streamState{cancel: cancel}
	e.stream = st
	sessionID := e.sessionID
	e.mu.Unlock()

	ch, err := e.streamer.OpenStream(streamCtx, trimmed, sessionID)
	if err != nil {
		ev := StreamEvent{Type: EventError, Err: err}
		if e.apply(st, ev) {
			notify(observers, ev)
		}
		return fmt.Errorf("failed to open chat stream: %w", err)
	}

	go e.consume(st, ch, observers)
	return nil
}

// consume is the sole reader of one turn's event channel. Arrival order
// is preserved because every event funnels through apply under the
// engine lock before the next one is read.
func (e *Engine) consume(st *streamState, ch <-chan StreamEvent, observers []EventObserver) {
	terminal := false
	for ev := range ch {
		if e.apply(st, ev) {
			notify(observers, ev)
		}
		if ev.Type == EventDone || ev.Type == EventError {
			terminal = true
		}
	}

	if !terminal {
		ev := StreamEvent{Type: EventError, Err: errors.New("stream closed before completion")}
		if e.apply(st, ev) {
			notify(observers, ev)
		}
	}
}

func notify(observers []EventObserver, ev StreamEvent) {
	for _, observer := range observers {
		if observer == nil {
			continue
		}
		observer(ev)
	}
}

// apply routes one stream event into the turn state. Events belonging
// to a turn that has been stopped or replaced are dropped: a session
// switch always wins over late arrivals, including the session-id meta
// event.
func (e *Engine) apply(st *streamState, ev StreamEvent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stream != st {
		return false
	}

	switch ev.Type {
	case EventToken:
		st.buf.WriteString(ev.Delta)
		if ev.MessageID != "" {
			st.messageID = ev.MessageID
		}
	case EventTrace:
		st.trace.append(ev.Trace)
	case EventMeta:
		if ev.Label == MetaSessionID && ev.Value != "" {
			e.sessionID = ev.Value
			e.persistLocked()
		}
	case EventDone:
		e.finalizeLocked(st, ev, nil)
	case EventError:
		failure := ev.Err
		if failure == nil {
			failure = errors.New("stream failed")
		}
		e.finalizeLocked(st, ev, failure)
	}

	return true
}

// finalizeLocked merges the accumulated stream state into an immutable
// agent message and returns the engine to idle. A partial buffer is
// never dropped: on failure it is finalized with a synthetic error
// trace entry, and an empty buffer is substituted with a fixed
// placeholder.
func (e *Engine) finalizeLocked(st *streamState, ev StreamEvent, failure error) {
	text := st.buf.String()
	if text == "" {
		text = emptyResponseText
	}

	trace := st.trace.snapshot()
	if failure == nil && len(ev.DoneTrace) > 0 {
		trace = ev.DoneTrace
	}
	if failure != nil {
		trace = append(trace, TraceItem{
			Step:  failure.Error(),
			Level: TraceLevelError,
			Time:  time.Now().UTC().Format(time.RFC3339),
		})
		logger.Warn("[Chat] Turn finalized after stream failure", "session_id", e.sessionID, "err", failure)
	}

	citations := ev.Citations
	if failure == nil && len(citations) == 0 {
		citations = ExtractCitationIDs(text)
	}

	e.messages = append(e.messages, Message{
		ID:        st.messageID,
		Role:      RoleAgent,
		Text:      text,
		Citations: citations,
		Trace:     trace,
	})

	e.stream = nil
	st.cancel()
	e.persistLocked()
}

// Stop forcibly closes any open stream and discards the in-flight turn
// without finalizing it. It is idempotent and safe to call when
// nothing is open. Stop is for session switch and reset paths only;
// normal completion goes through the terminal stream event.
func (e *Engine) Stop() {
	e.mu.Lock()
	st := e.stream
	e.stream = nil
	e.mu.Unlock()

	if st != nil {
		st.cancel()
	}
}

// LoadSessionHistory abandons any in-flight turn, fetches the full
// message list of the given session, replaces the transcript wholesale,
// and adopts that session's id and title.
func (e *Engine) LoadSessionHistory(ctx context.Context, sessionID string) error {
	e.Stop()

	summary, messages, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.messages = messages
	e.sessionID = summary.ID
	if e.sessionID == "" {
		e.sessionID = sessionID
	}
	e.sessionTitle = summary.Title
	e.persistLocked()
	return nil
}

// DeleteSession removes one session from the server-side store and the
// locally cached list. It is rejected while a turn is streaming, and
// while another delete for the same session is still outstanding. If
// the deleted session is the active one, the transcript and session
// identity are cleared locally.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	if e.stream != nil {
		e.mu.Unlock()
		return ErrTurnInFlight
	}
	if _, pending := e.pendingDeletes[sessionID]; pending {
		e.mu.Unlock()
		return ErrDeletePending
	}
	e.pendingDeletes[sessionID] = struct{}{}
	e.mu.Unlock()

	err := e.store.DeleteSession(ctx, sessionID)

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pendingDeletes, sessionID)

	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	filtered := e.sessions[:0]
	for _, s := range e.sessions {
		if s.ID != sessionID {
			filtered = append(filtered, s)
		}
	}
	e.sessions = filtered

	if e.sessionID == sessionID {
		e.resetLocked()
	}
	return nil
}

// ListSessions fetches session summaries from the store and refreshes
// the locally cached list. The active transcript is not touched.
func (e *Engine) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	sessions, err := e.store.ListSessions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	e.mu.Lock()
	e.sessions = sessions
	e.mu.Unlock()
	return sessions, nil
}

// ResetSession abandons any in-flight turn and clears the transcript,
// session identity, and persisted snapshot, returning the engine to a
// fresh unnamed session.
func (e *Engine) ResetSession() {
	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.messages = nil
	e.sessionID = ""
	e.sessionTitle = ""
	if e.snapshots != nil {
		if err := e.snapshots.Clear(); err != nil {
			logger.Warn("[Chat] Failed to clear snapshot", "err", err)
		}
	}
}

// Streaming reports whether a turn is currently in flight.
func (e *Engine) Streaming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream != nil
}

// Messages returns a copy of the current transcript.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// SessionID returns the active session id, or "" before the server has
// assigned one.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// SessionTitle returns the active session title.
func (e *Engine) SessionTitle() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionTitle
}

// Sessions returns the locally cached session list from the most
// recent ListSessions call, minus any sessions deleted since.
func (e *Engine) Sessions() []SessionSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]SessionSummary, len(e.sessions))
	copy(out, e.sessions)
	return out
}

func (e *Engine) persistLocked() {
	if e.snapshots == nil {
		return
	}

	snapshot := Snapshot{
		Messages:           make([]Message, len(e.messages)),
		SessionID:          e.sessionID,
		ActiveSessionTitle: e.sessionTitle,
	}
	copy(snapshot.Messages, e.messages)

	if err := e.snapshots.Save(snapshot); err != nil {
		logger.Warn("[Chat] Failed to persist snapshot", "err", err)
	}
}
