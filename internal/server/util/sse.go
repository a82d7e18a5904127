package util

import (
	"encoding/json"
	"fmt"

	"github.com/labstack/echo/v4"
)

// WriteSSEEvent writes one Server-Sent-Events frame to the response and
// flushes it, so the browser sees tokens as they arrive rather than on
// turn completion.
func WriteSSEEvent(c echo.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(c.Response(), "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
		return err
	}

	c.Response().Flush()
	return nil
}

// PrepareSSE sets the response headers for an event stream and commits
// them before the first frame.
func PrepareSSE(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(200)
}
