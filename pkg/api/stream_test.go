package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/graphlens/dashboard/pkg/chat"
)

func sseHandler(t *testing.T, frames string) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("expected SSE accept header, got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(frames))
	})
}

func collectEvents(t *testing.T, ch <-chan chat.StreamEvent) []chat.StreamEvent {
	t.Helper()

	var events []chat.StreamEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestOpenStreamDecodesEvents(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		"event: meta\ndata: {\"label\":\"session_id\",\"value\":\"s-7\"}\n\n"+
			"event: token\ndata: {\"delta\":\"Hel\",\"message_id\":\"m-1\"}\n\n"+
			"event: token\ndata: {\"delta\":\"lo\"}\n\n"+
			"event: trace\ndata: {\"step\":\"retrieval\",\"level\":\"info\"}\n\n"+
			"event: done\ndata: {\"citations\":[\"doc-1\"]}\n\n"))

	ch, err := client.OpenStream(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}

	events := collectEvents(t, ch)
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d: %+v", len(events), events)
	}
	if events[0].Type != chat.EventMeta || events[0].Label != chat.MetaSessionID || events[0].Value != "s-7" {
		t.Fatalf("unexpected meta event: %+v", events[0])
	}
	if events[1].Delta != "Hel" || events[1].MessageID != "m-1" {
		t.Fatalf("unexpected token event: %+v", events[1])
	}
	if events[3].Type != chat.EventTrace || events[3].Trace.Step != "retrieval" {
		t.Fatalf("unexpected trace event: %+v", events[3])
	}
	last := events[4]
	if last.Type != chat.EventDone || len(last.Citations) != 1 || last.Citations[0] != "doc-1" {
		t.Fatalf("unexpected done event: %+v", last)
	}
}

func TestOpenStreamMalformedFramesDropped(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		"event: token\ndata: not json\n\n"+
			"event: bogus\ndata: {}\n\n"+
			"event: token\ndata: {\"delta\":\"ok\"}\n\n"+
			"event: done\ndata: {}\n\n"))

	ch, err := client.OpenStream(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}

	events := collectEvents(t, ch)
	if len(events) != 2 {
		t.Fatalf("malformed frames must be dropped, got %d events: %+v", len(events), events)
	}
	if events[0].Delta != "ok" || events[1].Type != chat.EventDone {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestOpenStreamErrorEventTerminates(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		"event: token\ndata: {\"delta\":\"par\"}\n\n"+
			"event: error\ndata: {\"detail\":\"pipeline crashed\"}\n\n"))

	ch, err := client.OpenStream(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}

	events := collectEvents(t, ch)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	last := events[1]
	if last.Type != chat.EventError || last.Err == nil || last.Err.Error() != "pipeline crashed" {
		t.Fatalf("unexpected error event: %+v", last)
	}
}

func TestOpenStreamClosedWithoutTerminal(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		"event: token\ndata: {\"delta\":\"par\"}\n\n"))

	ch, err := client.OpenStream(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}

	// The channel closes without a terminal event; the engine is
	// responsible for treating that as a failed turn.
	events := collectEvents(t, ch)
	if len(events) != 1 || events[0].Type != chat.EventToken {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestOpenStreamNon200(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "pipeline offline"}`))
	}))

	_, err := client.OpenStream(context.Background(), "hi", "")
	if err == nil || err.Error() != "pipeline offline" {
		t.Fatalf("expected surfaced detail, got %v", err)
	}
}

func TestOpenStreamSendsSessionID(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("event: done\ndata: {}\n\n"))
	}))
	defer srv.Close()

	client := NewClient(NewClientParams{BaseURL: srv.URL})
	ch, err := client.OpenStream(context.Background(), "hi", "s-9")
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	collectEvents(t, ch)

	want := `{"message":"hi","session_id":"s-9"}`
	if gotBody != want {
		t.Fatalf("request body = %q, want %q", gotBody, want)
	}
}
