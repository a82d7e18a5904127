package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/graphlens/dashboard/pkg/chat"
	"github.com/graphlens/dashboard/pkg/logger"
)

// ListSessions fetches up to limit session summaries, newest first per
// the upstream ordering. A malformed payload yields an empty list.
func (c *Client) ListSessions(ctx context.Context, limit int) ([]chat.SessionSummary, error) {
	path := "/sessions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var sessions []chat.SessionSummary
	if err := json.Unmarshal(body, &sessions); err != nil {
		logger.Warn("[API] Unexpected session list payload, treating as empty", "err", err)
		return []chat.SessionSummary{}, nil
	}

	return sessions, nil
}

// GetSession fetches one session with its full message history.
// Messages with a role outside the user/agent pair (tool calls, system
// prompts) are dropped during reconciliation.
func (c *Client) GetSession(ctx context.Context, sessionID string) (chat.SessionSummary, []chat.Message, error) {
	body, err := c.get(ctx, "/sessions/"+url.PathEscape(sessionID))
	if err != nil {
		return chat.SessionSummary{}, nil, err
	}

	var payload struct {
		Session  chat.SessionSummary `json:"session"`
		Messages []struct {
			ID          any             `json:"id"`
			Role        string          `json:"role"`
			Content     string          `json:"content"`
			ToolName    string          `json:"tool_name"`
			ToolPayload json.RawMessage `json:"tool_payload"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn("[API] Unexpected session payload, treating as empty", "session_id", sessionID, "err", err)
		return chat.SessionSummary{ID: sessionID}, []chat.Message{}, nil
	}

	messages := make([]chat.Message, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		role, ok := reconcileRole(m.Role)
		if !ok {
			continue
		}

		msg := chat.Message{Role: role, Text: m.Content}
		if m.ID != nil {
			msg.ID = fmt.Sprint(m.ID)
		}
		if role == chat.RoleAgent {
			msg.Citations = chat.ExtractCitationIDs(m.Content)
		}
		messages = append(messages, msg)
	}

	return payload.Session, messages, nil
}

// reconcileRole maps upstream message roles onto the transcript roles.
func reconcileRole(role string) (chat.Role, bool) {
	switch role {
	case "user":
		return chat.RoleUser, true
	case "agent", "assistant":
		return chat.RoleAgent, true
	}
	return "", false
}

// DeleteSession removes one session from the server-side store. The
// upstream error detail string, when present, is surfaced verbatim.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := readLimited(resp.Body)
		return decodeAPIError(resp.StatusCode, body)
	}

	return nil
}
