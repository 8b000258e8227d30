package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lumina-dashboard-api/internal/config"
	"github.com/noah-isme/lumina-dashboard-api/internal/handler"
	"github.com/noah-isme/lumina-dashboard-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ContentHandler      *handler.ContentHandler
	JWTMiddleware       fiber.Handler
	OrganizationContext fiber.Handler
	MutationRateLimit   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	orgContext := deps.OrganizationContext
	if orgContext == nil {
		orgContext = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ContentHandler != nil {
		contents := api.Group("/organizations/:slug/contents", jwtMiddleware, orgContext)
		deps.ContentHandler.Register(contents, deps.MutationRateLimit)
	}
}
