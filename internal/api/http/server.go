package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/fx"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/api/http/middleware"
	"github.com/hospintel/hospintel_backend/internal/api/http/router"
	"github.com/hospintel/hospintel_backend/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := NewApp(p.Cfg, p.OTel)
	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			slog.Info("HTTP server listening", "addr", addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// NewApp builds the Fiber app with global middleware but no routes. A nil
// telemetry provider leaves requests unmeasured.
func NewApp(cfg *config.Config, telemetry *observability.Provider) *fiber.App {
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	app := fiber.New(fiber.Config{
		AppName:      cfg.Observability.ServiceName,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		BodyLimit:    64 * 1024,
		ErrorHandler: errorHandler,
		// Header, query and param values end up in stored records.
		Immutable: true,
	})

	if telemetry != nil {
		app.Use(observability.HTTPMiddleware(observability.HTTPOptions{
			Tracing:       telemetry.Tracing(),
			Skip:          unmeasuredPaths(cfg),
			MeterProvider: telemetry.MeterProvider,
		}))
	}

	configureGlobalMiddleware(app, cfg)
	return app
}

// unmeasuredPaths are probe and scrape routes kept out of the HTTP series.
func unmeasuredPaths(cfg *config.Config) []string {
	metricsPath := cfg.Observability.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	return []string{healthcheck.LivenessEndpoint, healthcheck.ReadinessEndpoint, healthcheck.StartupEndpoint, metricsPath}
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.IsProduction() {
		app.Use(helmet.New())
	}
	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORS.AllowOrigins}))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${respHeader:X-Request-Id}] ${method} ${url} ${status}\n",
	}))
}

// errorHandler renders fiber errors as {"error": msg}. Anything else is a
// 500 carrying the request id so it can be matched against the logs.
func errorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	rid, _ := middleware.RequestIDFromFiber(c)
	slog.ErrorContext(c.Context(), "unhandled error", "error", err, "request_id", rid)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error", "request_id": rid})
}
