package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/graphlens/dashboard/pkg/chat"
	"github.com/graphlens/dashboard/pkg/logger"
)

// OpenStream starts one streamed chat turn against the upstream SSE
// endpoint and returns a single-consumer channel of decoded events in
// arrival order. The channel always terminates with a done or error
// event (connection-level failures are converted into a terminal error
// event) and is closed afterwards. Canceling the context tears the
// connection down.
func (c *Client) OpenStream(ctx context.Context, message string, sessionID string) (<-chan chat.StreamEvent, error) {
	payload, err := json.Marshal(struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id,omitempty"`
	}{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode stream request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chat stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	ch := make(chan chat.StreamEvent)
	go readStream(resp.Body, ch)
	return ch, nil
}

// readStream decodes SSE frames into typed stream events until a
// terminal frame or a transport failure, then closes the channel.
func readStream(body io.ReadCloser, ch chan<- chat.StreamEvent) {
	defer close(ch)
	defer body.Close()

	reader := newSSEReader(body)
	for {
		frame, err := reader.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				ch <- chat.StreamEvent{Type: chat.EventError, Err: err}
			}
			return
		}

		ev, ok := mapStreamEvent(frame)
		if !ok {
			continue
		}

		ch <- ev
		if ev.Type == chat.EventDone || ev.Type == chat.EventError {
			return
		}
	}
}

// mapStreamEvent decodes one SSE frame into an engine event. Malformed
// frames are dropped rather than killing the stream.
func mapStreamEvent(frame sseEvent) (chat.StreamEvent, bool) {
	switch frame.name {
	case "token":
		var p struct {
			Delta     string `json:"delta"`
			MessageID string `json:"message_id"`
		}
		if err := json.Unmarshal([]byte(frame.data), &p); err != nil {
			logger.Debug("[API] Dropping malformed token event", "err", err)
			return chat.StreamEvent{}, false
		}
		return chat.StreamEvent{Type: chat.EventToken, Delta: p.Delta, MessageID: p.MessageID}, true

	case "trace":
		var item chat.TraceItem
		if err := json.Unmarshal([]byte(frame.data), &item); err != nil {
			logger.Debug("[API] Dropping malformed trace event", "err", err)
			return chat.StreamEvent{}, false
		}
		return chat.StreamEvent{Type: chat.EventTrace, Trace: item}, true

	case "meta":
		var p struct {
			Label string `json:"label"`
			Value string `json:"value"`
		}
		if err := json.Unmarshal([]byte(frame.data), &p); err != nil {
			logger.Debug("[API] Dropping malformed meta event", "err", err)
			return chat.StreamEvent{}, false
		}
		return chat.StreamEvent{Type: chat.EventMeta, Label: p.Label, Value: p.Value}, true

	case "done":
		var p struct {
			Citations []string         `json:"citations"`
			Trace     []chat.TraceItem `json:"trace"`
		}
		if frame.data != "" {
			if err := json.Unmarshal([]byte(frame.data), &p); err != nil {
				logger.Debug("[API] Dropping malformed done payload", "err", err)
			}
		}
		return chat.StreamEvent{Type: chat.EventDone, Citations: p.Citations, DoneTrace: p.Trace}, true

	case "error":
		var p struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		detail := "stream error"
		if err := json.Unmarshal([]byte(frame.data), &p); err == nil {
			if p.Detail != "" {
				detail = p.Detail
			} else if p.Message != "" {
				detail = p.Message
			}
		}
		return chat.StreamEvent{Type: chat.EventError, Err: errors.New(detail)}, true
	}

	return chat.StreamEvent{}, false
}
