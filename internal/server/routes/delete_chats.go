package routes

import (
	"errors"
	"net/http"
	"strings"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/graphlens/dashboard/internal/server/middleware"
	"github.com/graphlens/dashboard/pkg/chat"
	"github.com/graphlens/dashboard/pkg/logger"
)

func DeleteSessionHandler(c echo.Context) error {
	type deleteSessionParams struct {
		SessionID string `param:"session_id" validate:"required"`
	}

	type deleteSessionResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteSessionParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteSessionResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteSessionResponse{Message: "Invalid request params"})
	}

	params.SessionID = strings.TrimSpace(params.SessionID)
	if params.SessionID == "" {
		return c.JSON(http.StatusBadRequest, deleteSessionResponse{Message: "session_id is required"})
	}

	eng := c.(*middleware.AppContext).App.Chat
	if err := eng.DeleteSession(c.Request().Context(), params.SessionID); err != nil {
		if errors.Is(err, chat.ErrTurnInFlight) {
			return c.JSON(http.StatusConflict, deleteSessionResponse{Message: "Cannot delete a session while a turn is streaming"})
		}
		if errors.Is(err, chat.ErrDeletePending) {
			return c.JSON(http.StatusConflict, deleteSessionResponse{Message: "Delete already in progress"})
		}

		logger.Error("Failed to delete session", "session_id", params.SessionID, "err", err)
		return c.JSON(http.StatusBadGateway, deleteSessionResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, deleteSessionResponse{Message: "Session deleted successfully"})
}
