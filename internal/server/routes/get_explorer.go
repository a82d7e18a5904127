package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphlens/dashboard/internal/server/middleware"
)

func GetExplorerTypesHandler(c echo.Context) error {
	eng := c.(*middleware.AppContext).App.Explorer
	if !eng.HasDataset() {
		return c.JSON(http.StatusConflict, map[string]string{"message": "No subject loaded"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"subject_id": eng.SubjectID(),
		"types":      eng.Types(),
	})
}

func GetExplorerEntitiesHandler(c echo.Context) error {
	eng := c.(*middleware.AppContext).App.Explorer
	if !eng.HasDataset() {
		return c.JSON(http.StatusConflict, map[string]string{"message": "No subject loaded"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"selected_type": eng.SelectedType(),
		"entities":      eng.Entities(),
	})
}

func GetExplorerElementsHandler(c echo.Context) error {
	eng := c.(*middleware.AppContext).App.Explorer
	return c.JSON(http.StatusOK, eng.RenderElements())
}
