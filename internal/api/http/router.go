package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-console/internal/api/http/handlers"
	"github.com/spec-kit/nexus-console/internal/auth"
	"github.com/spec-kit/nexus-console/internal/authz"
)

// APIPrefix is the base path the console's API_BASE_URL points at.
const APIPrefix = "/api"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboard      *handlers.DashboardHandler
	Chat           *handlers.ChatHandler
	Tickets        *handlers.TicketsHandler
	Tasks          *handlers.TasksHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Only the auth endpoints are open; every
// other group requires a session and the capability for its screen.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group(APIPrefix)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.Auth.Me)
	authGroup.Post("/logout", cfg.Auth.Logout)

	session := cfg.AuthMiddleware.Handle

	dashboard := api.Group("/dashboard", session, auth.RequireCapability(authz.ViewDashboard))
	dashboard.Get("/summary", cfg.Dashboard.Summary)

	chat := api.Group("/chat", session, auth.RequireCapability(authz.ViewChat))
	chat.Get("/my", cfg.Chat.MyChats)
	chat.Get("/messages/:id", cfg.Chat.Messages)
	chat.Post("/messages/:id", cfg.Chat.Send)
	chat.Post("/close/:id", cfg.Chat.Close)
	chat.Post("/:id/read", cfg.Chat.MarkRead)

	tickets := api.Group("/tickets", session, auth.RequireCapability(authz.ViewTickets))
	tickets.Get("", cfg.Tickets.List)
	tickets.Put("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/assign", auth.RequireCapability(authz.AssignTicket), cfg.Tickets.Assign)

	tasks := api.Group("/tasks", session, auth.RequireCapability(authz.ViewTasks))
	tasks.Get("/my", cfg.Tasks.MyTasks)
	tasks.Put("/:id/status", cfg.Tasks.UpdateStatus)

	staff := api.Group("/staff", session, auth.RequireCapability(authz.ViewStaff))
	staff.Get("", cfg.Staff.List)
	staff.Put("/:id/role", auth.RequireCapability(authz.ManageStaff), cfg.Staff.UpdateRole)
}
