package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/http/handlers"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Items          *handlers.ItemsHandler
	Notifications  *handlers.NotificationsHandler
	Oncall         *handlers.OncallHandler
	Time           *handlers.TimeHandler
	Branches       *handlers.BranchesHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	items := app.Group("/items", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	items.Post("/", cfg.Items.Create)
	items.Get("/", cfg.Items.List)
	items.Get("/:id", cfg.Items.Get)
	items.Patch("/:id", cfg.Items.Apply)
	items.Patch("/:id/assign", cfg.Items.Assign)
	items.Post("/:id/comments", cfg.Items.AddComment)
	items.Get("/:id/comments", cfg.Items.ListComments)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Patch("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)
	notifications.Get("/preferences", cfg.Notifications.GetPreferences)
	notifications.Put("/preferences", cfg.Notifications.UpdatePreferences)

	oncall := app.Group("/oncall", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	oncall.Get("/current", cfg.Oncall.Current)
	oncall.Get("/roster", cfg.Oncall.Roster)
	oncall.Post("/seed", auth.RequireRole(domain.RoleManager), cfg.Oncall.Seed)

	branches := app.Group("/branches", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	branches.Get("/", cfg.Branches.List)
	branches.Post("/", auth.RequireRole(domain.RoleManager), cfg.Branches.Create)

	timeGroup := app.Group("/time", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	timeGroup.Post("/timer/start", cfg.Time.StartTimer)
	timeGroup.Post("/timer/:id/stop", cfg.Time.StopTimer)
	timeGroup.Get("/timer/active", cfg.Time.ActiveTimer)
	timeGroup.Post("/log", cfg.Time.LogTime)
	timeGroup.Get("/mine", cfg.Time.ListMine)
}
