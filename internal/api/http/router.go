package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hvac-service-desk/internal/api/http/handlers"
	"github.com/spec-kit/hvac-service-desk/internal/auth"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Escalations    *handlers.EscalationsHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Route-level role guards are a first
// filter only; the services re-check roles and ownership on every call.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireRole())

	users := api.Group("/users")
	users.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.CreateUser)
	users.Get("/", cfg.Users.ListUsers)
	users.Get("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.GetUser)
	users.Patch("/:id/active", auth.RequireRole(domain.RoleAdmin), cfg.Users.SetActive)

	requests := api.Group("/requests")
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Patch("/:id", cfg.Requests.Update)
	requests.Post("/:id/status", cfg.Requests.SetStatus)
	requests.Post("/:id/assign", cfg.Requests.Assign)
	requests.Post("/:id/assistant", cfg.Requests.SetAssistant)
	requests.Post("/:id/claim", cfg.Requests.Claim)
	requests.Post("/:id/deadline/extend", cfg.Requests.ExtendDeadline)
	requests.Post("/:id/comments", cfg.Requests.AddComment)
	requests.Get("/:id/comments", cfg.Requests.ListComments)
	requests.Get("/:id/history", cfg.Requests.ListHistory)
	requests.Post("/:id/help", cfg.Escalations.Open)
	requests.Post("/:id/reassign", cfg.Escalations.Reassign)
	requests.Post("/:id/attach-assistant", cfg.Escalations.AttachAssistant)

	escalations := api.Group("/escalations")
	escalations.Get("/", cfg.Escalations.ListOpen)
	escalations.Post("/:id/resolve", cfg.Escalations.Resolve)

	api.Get("/equipment-types", cfg.Requests.ListEquipmentTypes)
	api.Get("/stats", cfg.Stats.Statistics)
}
