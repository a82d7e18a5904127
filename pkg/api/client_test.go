package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/graphlens/dashboard/pkg/chat"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(NewClientParams{BaseURL: srv.URL})
}

func TestFetchDataset(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graph/acme" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"nodes": [
				{"id": "A", "type": "company", "name": "Acme"},
				{"id": "B", "type": "patent", "name": "Widget"}
			],
			"edges": [
				{"id": "e1", "source": "A", "target": "B", "type": "owns"}
			]
		}`))
	}))

	ds, err := client.FetchDataset(context.Background(), "acme")
	if err != nil {
		t.Fatalf("FetchDataset failed: %v", err)
	}
	if got := len(ds.Nodes); got != 2 {
		t.Fatalf("expected 2 nodes, got %d", got)
	}
	if got := len(ds.Edges); got != 1 {
		t.Fatalf("expected 1 edge, got %d", got)
	}
}

func TestFetchDatasetMalformedPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))

	ds, err := client.FetchDataset(context.Background(), "acme")
	if err != nil {
		t.Fatalf("malformed payload must not error: %v", err)
	}
	if len(ds.Nodes) != 0 || len(ds.Edges) != 0 {
		t.Fatal("malformed payload must decode to an empty dataset")
	}
}

func TestFetchDatasetUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail": "graph service unavailable"}`))
	}))

	_, err := client.FetchDataset(context.Background(), "acme")
	if err == nil {
		t.Fatal("expected an error for a failed request")
	}
	if err.Error() != "graph service unavailable" {
		t.Fatalf("upstream detail must be surfaced, got %q", err.Error())
	}
}

func TestListSessions(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("expected limit=10, got %q", got)
		}
		w.Write([]byte(`[
			{"session_id": "s-1", "title": "First"},
			{"session_id": "s-2", "title": "Second"}
		]`))
	}))

	sessions, err := client.ListSessions(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "s-1" || sessions[1].Title != "Second" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestListSessionsMalformedPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"oops": true}`))
	}))

	sessions, err := client.ListSessions(context.Background(), 0)
	if err != nil {
		t.Fatalf("malformed payload must not error: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected empty list, got %+v", sessions)
	}
}

func TestGetSessionReconcilesRoles(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/s-1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"session": {"session_id": "s-1", "title": "First"},
			"messages": [
				{"id": 1, "role": "user", "content": "question"},
				{"id": 2, "role": "tool", "content": "{}", "tool_name": "search"},
				{"id": 3, "role": "assistant", "content": "answer [[doc-1]]"},
				{"id": "m-4", "role": "system", "content": "prompt"}
			]
		}`))
	}))

	summary, messages, err := client.GetSession(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if summary.ID != "s-1" || summary.Title != "First" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(messages) != 2 {
		t.Fatalf("tool and system messages must be dropped, got %d messages", len(messages))
	}
	if messages[0].Role != chat.RoleUser || messages[0].ID != "1" {
		t.Fatalf("unexpected first message: %+v", messages[0])
	}
	if messages[1].Role != chat.RoleAgent {
		t.Fatalf("assistant role must map to agent, got %s", messages[1].Role)
	}
	if len(messages[1].Citations) != 1 || messages[1].Citations[0] != "doc-1" {
		t.Fatalf("citations must be extracted for agent messages, got %v", messages[1].Citations)
	}
}

func TestDeleteSessionSurfacesDetail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "session not found"}`))
	}))

	err := client.DeleteSession(context.Background(), "s-404")
	if err == nil || err.Error() != "session not found" {
		t.Fatalf("expected surfaced detail, got %v", err)
	}
}

func TestDeleteSessionOK(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.DeleteSession(context.Background(), "s-1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
}
