package routes

import (
	"net/http"
	"strings"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/graphlens/dashboard/internal/server/middleware"
	"github.com/graphlens/dashboard/pkg/logger"
)

func GetSessionsHandler(c echo.Context) error {
	type getSessionsParams struct {
		Limit int `query:"limit"`
	}

	params := new(getSessionsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if params.Limit <= 0 {
		params.Limit = 50
	}

	eng := c.(*middleware.AppContext).App.Chat
	sessions, err := eng.ListSessions(c.Request().Context(), params.Limit)
	if err != nil {
		logger.Error("Failed to list sessions", "err", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, sessions)
}

func GetSessionHandler(c echo.Context) error {
	type getSessionParams struct {
		SessionID string `param:"session_id" validate:"required"`
	}

	params := new(getSessionParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	params.SessionID = strings.TrimSpace(params.SessionID)
	if params.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "session_id is required"})
	}

	eng := c.(*middleware.AppContext).App.Chat
	if err := eng.LoadSessionHistory(c.Request().Context(), params.SessionID); err != nil {
		logger.Error("Failed to load session history", "session_id", params.SessionID, "err", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session_id": eng.SessionID(),
		"title":      eng.SessionTitle(),
		"messages":   eng.Messages(),
	})
}
