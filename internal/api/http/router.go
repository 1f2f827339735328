package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Triage         *handlers.TriageHandler
	Tickets        *handlers.TicketsHandler
	Corpus         *handlers.CorpusHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1")
	api.Post("/chat", cfg.Triage.Chat)
	api.Post("/triage", cfg.Triage.Submit)
	api.Post("/triage/analyze", cfg.Triage.Analyze)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole())
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:key", cfg.Tickets.Get)
	tickets.Post("/:key/draft", cfg.Tickets.Draft)
	tickets.Post("/:key/notify", cfg.Tickets.Notify)

	corpusGroup := api.Group("/corpus", cfg.AuthMiddleware.Handle, auth.RequireRole())
	corpusGroup.Get("/", cfg.Corpus.Stats)
	corpusGroup.Post("/reload", auth.RequireRole(domain.StaffRoleAdmin), cfg.Corpus.Reload)
}
