package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client talks to the upstream pipeline API: graph data, session store,
// and the chat stream endpoint. It implements the collaborator
// interfaces the explorer and chat engines consume.
//
// Identical in-flight GETs are collapsed into one request, so a burst
// of duplicate loads from the UI hits the upstream once.
//
// A Client should be created using NewClient.
type Client struct {
	baseURL string

	// http serves request-response calls and carries a timeout. stream
	// serves the long-lived SSE connection and must not: the engine
	// owns teardown through context cancellation.
	http   *http.Client
	stream *http.Client

	flight singleflight.Group
}

// NewClientParams defines the configuration for creating a Client.
type NewClientParams struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates an upstream API client.
func NewClient(params NewClientParams) *Client {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(params.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
	}
}

// get performs one GET against the upstream, collapsing duplicate
// in-flight requests for the same path.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	result, err, _ := c.flight.Do(path, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, decodeAPIError(resp.StatusCode, body)
		}

		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// readLimited reads an error body with a small cap, enough for any
// upstream error payload.
func readLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, 4096))
}

// decodeAPIError surfaces the human-readable detail string of an
// upstream error payload, falling back to the status code.
func decodeAPIError(status int, body []byte) error {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return errors.New(payload.Detail)
		}
		if payload.Message != "" {
			return errors.New(payload.Message)
		}
	}

	return fmt.Errorf("upstream returned status %d", status)
}
