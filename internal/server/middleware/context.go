package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/graphlens/dashboard/pkg/chat"
	"github.com/graphlens/dashboard/pkg/explorer"
)

// App carries the engine instances shared by every handler. The
// engines own their state exclusively; handlers only call into them.
type App struct {
	Explorer *explorer.Engine
	Chat     *chat.Engine
}

// AppContext wraps the echo context with the application dependencies.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware injects the engine instances into every request
// context.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
