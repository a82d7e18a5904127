package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	mid "github.com/graphlens/dashboard/internal/server/middleware"
	"github.com/graphlens/dashboard/internal/storage"
	"github.com/graphlens/dashboard/internal/util"
	"github.com/graphlens/dashboard/pkg/api"
	"github.com/graphlens/dashboard/pkg/chat"
	"github.com/graphlens/dashboard/pkg/explorer"
	"github.com/graphlens/dashboard/pkg/logger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	upstreamURL := util.GetEnv("UPSTREAM_API_URL")
	if upstreamURL == "" {
		logger.Fatal("UPSTREAM_API_URL must be set")
	}

	client := api.NewClient(api.NewClientParams{
		BaseURL: upstreamURL,
		Timeout: time.Duration(util.GetEnvNumeric("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
	})

	snapshots, err := storage.NewSnapshotStore(storage.NewSnapshotStoreParams{
		Dir: util.GetEnvString("STATE_DIR", "./data"),
	})
	if err != nil {
		logger.Fatal("Failed to open snapshot store", "err", err)
	}

	explorerEngine := explorer.NewEngine(explorer.NewEngineParams{
		Fetcher: client,
	})
	chatEngine := chat.NewEngine(chat.NewEngineParams{
		Streamer:  client,
		Store:     client,
		Snapshots: snapshots,
	})

	app := &mid.App{
		Explorer: explorerEngine,
		Chat:     chatEngine,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()

	// Tear down any open stream before the listener goes away.
	chatEngine.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
