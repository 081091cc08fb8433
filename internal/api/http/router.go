package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enquiry-service/internal/api/http/handlers"
	"github.com/spec-kit/enquiry-service/internal/auth"
	"github.com/spec-kit/enquiry-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Enquiries      *handlers.EnquiriesHandler
	Users          *handlers.UsersHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Status)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	enquiries := app.Group("/enquiries", cfg.AuthMiddleware.Handle)
	enquiries.Post("/", cfg.Enquiries.Create)
	enquiries.Get("/", cfg.Enquiries.List)
	enquiries.Get("/:id", cfg.Enquiries.GetByID)
	enquiries.Put("/:id", cfg.Enquiries.Update)
	enquiries.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Enquiries.Delete)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	analytics := app.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	analytics.Get("/top-performers", cfg.Analytics.TopPerformers)
}
