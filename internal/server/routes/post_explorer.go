package routes

import (
	"errors"
	"net/http"
	"strings"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/graphlens/dashboard/internal/server/middleware"
	"github.com/graphlens/dashboard/pkg/explorer"
)

func LoadSubjectHandler(c echo.Context) error {
	type loadSubjectParams struct {
		SubjectID string `param:"subject_id" validate:"required"`
	}

	params := new(loadSubjectParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	params.SubjectID = strings.TrimSpace(params.SubjectID)
	if params.SubjectID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "subject_id is required"})
	}

	eng := c.(*middleware.AppContext).App.Explorer
	if err := eng.LoadSubject(c.Request().Context(), params.SubjectID); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"subject_id": params.SubjectID,
		"types":      eng.Types(),
	})
}

func SelectTypeHandler(c echo.Context) error {
	type selectTypeParams struct {
		Type string `json:"type" validate:"required"`
	}

	params := new(selectTypeParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	eng := c.(*middleware.AppContext).App.Explorer
	eng.SelectType(params.Type)

	return c.JSON(http.StatusOK, map[string]any{
		"selected_type": eng.SelectedType(),
		"entities":      eng.Entities(),
	})
}

func SelectEntityHandler(c echo.Context) error {
	type selectEntityParams struct {
		NodeID string `json:"node_id" validate:"required"`
	}

	params := new(selectEntityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	eng := c.(*middleware.AppContext).App.Explorer
	if err := eng.SelectEntity(params.NodeID); err != nil {
		if errors.Is(err, explorer.ErrUnknownNode) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Node not found"})
		}
		return c.JSON(http.StatusConflict, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, eng.RenderElements())
}

func ExpandNodeHandler(c echo.Context) error {
	type expandNodeParams struct {
		NodeID string `json:"node_id" validate:"required"`
	}

	params := new(expandNodeParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	eng := c.(*middleware.AppContext).App.Explorer
	if err := eng.ExpandNeighborhood(params.NodeID); err != nil {
		if errors.Is(err, explorer.ErrUnknownNode) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Node not found"})
		}
		return c.JSON(http.StatusConflict, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, eng.RenderElements())
}
