package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/convexhub/apigateway/internal/config"
	"github.com/locvowork/convexhub/apigateway/internal/handler"
	"github.com/locvowork/convexhub/apigateway/internal/logger"
	"github.com/locvowork/convexhub/apigateway/internal/repository"
	"github.com/locvowork/convexhub/apigateway/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Echo  *echo.Echo
	Store repository.Store
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{Echo: e}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH)
	logger.SetLevel(cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Open the store once; every request shares the handle
	store, err := repository.Open(ctx, repository.Config{
		Driver:      cfg.STORE_DRIVER,
		URL:         cfg.STORE_URL,
		AccessToken: cfg.STORE_ACCESS_TOKEN,
		ProjectID:   cfg.GCP_PROJECT_ID,
		Pool: repository.PoolConfig{
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.STORE_DRIVER, err)
	}
	a.Store = store
	logger.InfoLog(ctx, fmt.Sprintf("Connected to %s store", cfg.STORE_DRIVER))

	if err := a.wire(store, cfg); err != nil {
		a.close(ctx)
		a.Store = nil
		return err
	}
	return nil
}

// wire builds services and handlers on top of an open store.
func (a *App) wire(store repository.Store, cfg config.EnvConfig) error {
	// Initialize dependencies
	taskSvc := service.NewTaskService(store.Tasks())
	pressSvc := service.NewButtonPressService(store.ButtonPresses())

	exportHandler, err := handler.NewExportHandler(taskSvc, pressSvc, cfg.EXPORT_LAYOUT_FILE)
	if err != nil {
		return err
	}

	renderer, err := handler.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	a.Echo.Renderer = renderer

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(
		handler.NewTaskHandler(taskSvc),
		handler.NewButtonPressHandler(pressSvc),
		handler.NewDashboardHandler(taskSvc, pressSvc),
		exportHandler,
	)

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
	a.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	a.Echo.Use(requestContext)
}

// requestContext makes the request id visible to the log helpers.
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		}
		return next(c)
	}
}

func (a *App) RegisterRoutes(taskHandler *handler.TaskHandler, pressHandler *handler.ButtonPressHandler, dashHandler *handler.DashboardHandler, exportHandler *handler.ExportHandler) {
	a.Echo.GET("/", dashHandler.IndexHandler)
	a.Echo.POST("/press", dashHandler.PressFormHandler)
	a.Echo.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := a.Echo.Group("/api/v1")
	api.GET("/tasks", taskHandler.ListHandler)
	api.POST("/button-presses", pressHandler.PressHandler)
	api.GET("/button-presses/summary", pressHandler.SummaryHandler)
	api.GET("/dashboard/export", exportHandler.DashboardExportHandler)
}

// Run serves until ctx is cancelled or the process receives SIGINT/SIGTERM,
// then drains in-flight requests and closes the store.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.close(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.InfoLog(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

func (a *App) close(ctx context.Context) {
	if a.Store == nil {
		return
	}
	if err := a.Store.Close(); err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to close store: %v", err))
	}
}
