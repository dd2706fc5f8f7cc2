package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/api/http/handler"
	"github.com/hospintel/hospintel_backend/internal/api/http/middleware"
	"github.com/hospintel/hospintel_backend/internal/service/admin"
	"github.com/hospintel/hospintel_backend/internal/service/submission"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg     *config.Config
	Redis   *goredis.Client
	Gateway *submission.Gateway
	Admin   *admin.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	formsH := handler.NewFormsHandler(r.p.Gateway)
	adminH := handler.NewAdminHandler(r.p.Admin)

	var limit fiber.Handler = passthrough
	if r.p.Cfg.Server.RateLimit.Enabled {
		limit = middleware.NewLimiter(r.p.Cfg.Server.RateLimit, r.p.Redis)
	}

	api := app.Group("/api/v1")

	r.registerFormRoutes(api, formsH, limit)
	r.registerAdminRoutes(api, adminH, middleware.AdminRequired(r.p.Admin), limit)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

func passthrough(c fiber.Ctx) error { return c.Next() }
