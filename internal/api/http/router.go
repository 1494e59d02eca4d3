package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-agent-bridge/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Assistant *handlers.AssistantHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/invocations", cfg.Assistant.Invoke)
}
