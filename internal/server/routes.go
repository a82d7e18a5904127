package server

import (
	"github.com/labstack/echo/v4"

	"github.com/graphlens/dashboard/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Graph explorer routes
	apiRoutes.POST("/explorer/subjects/:subject_id/load", routes.LoadSubjectHandler)
	apiRoutes.POST("/explorer/type", routes.SelectTypeHandler)
	apiRoutes.POST("/explorer/entity", routes.SelectEntityHandler)
	apiRoutes.POST("/explorer/expand", routes.ExpandNodeHandler)
	apiRoutes.GET("/explorer/types", routes.GetExplorerTypesHandler)
	apiRoutes.GET("/explorer/entities", routes.GetExplorerEntitiesHandler)
	apiRoutes.GET("/explorer/elements", routes.GetExplorerElementsHandler)

	// Chat session routes
	apiRoutes.POST("/chat/stream", routes.ChatStreamHandler)
	apiRoutes.POST("/chat/reset", routes.ResetChatHandler)
	apiRoutes.GET("/chat/sessions", routes.GetSessionsHandler)
	apiRoutes.GET("/chat/sessions/:session_id", routes.GetSessionHandler)
	apiRoutes.DELETE("/chat/sessions/:session_id", routes.DeleteSessionHandler)
}
