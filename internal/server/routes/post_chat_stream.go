package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/graphlens/dashboard/internal/server/middleware"
	serverutil "github.com/graphlens/dashboard/internal/server/util"
	"github.com/graphlens/dashboard/pkg/chat"
)

func ChatStreamHandler(c echo.Context) error {
	type chatStreamParams struct {
		Message string `json:"message" validate:"required"`
	}

	params := new(chatStreamParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	eng := c.(*middleware.AppContext).App.Chat
	if eng.Streaming() {
		return c.JSON(http.StatusConflict, map[string]string{"message": "A turn is already streaming"})
	}

	serverutil.PrepareSSE(c)

	// Terminal frame closes this; the engine guarantees every turn ends
	// with done or error.
	finished := make(chan struct{})
	observer := func(ev chat.StreamEvent) {
		switch ev.Type {
		case chat.EventToken:
			_ = serverutil.WriteSSEEvent(c, "token", map[string]string{
				"delta":      ev.Delta,
				"message_id": ev.MessageID,
			})
		case chat.EventTrace:
			_ = serverutil.WriteSSEEvent(c, "trace", ev.Trace)
		case chat.EventMeta:
			_ = serverutil.WriteSSEEvent(c, "meta", map[string]string{
				"label": ev.Label,
				"value": ev.Value,
			})
		case chat.EventDone:
			_ = serverutil.WriteSSEEvent(c, "done", map[string]any{
				"citations": ev.Citations,
				"trace":     ev.DoneTrace,
			})
			close(finished)
		case chat.EventError:
			detail := "stream failed"
			if ev.Err != nil {
				detail = ev.Err.Error()
			}
			_ = serverutil.WriteSSEEvent(c, "error", map[string]string{"detail": detail})
			close(finished)
		}
	}

	if err := eng.Send(c.Request().Context(), params.Message, observer); err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrTurnInFlight) {
			_ = serverutil.WriteSSEEvent(c, "error", map[string]string{"detail": err.Error()})
			return nil
		}
		// Connection failures already produced a terminal error frame
		// through the observer.
		return nil
	}

	select {
	case <-finished:
	case <-c.Request().Context().Done():
	}
	return nil
}

func ResetChatHandler(c echo.Context) error {
	eng := c.(*middleware.AppContext).App.Chat
	eng.ResetSession()
	return c.JSON(http.StatusOK, map[string]string{"message": "Session reset"})
}
