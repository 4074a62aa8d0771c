package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/api/http/handlers"
	"github.com/spec-kit/nexus-console/internal/auth"
	"github.com/spec-kit/nexus-console/internal/config"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/observability"
	"github.com/spec-kit/nexus-console/internal/persistence"
	"github.com/spec-kit/nexus-console/internal/repository"
	"github.com/spec-kit/nexus-console/internal/service"
	"github.com/spec-kit/nexus-console/internal/worker"
)

// ServerDependencies bundles what the devserver is assembled from. Postgres
// and Redis are only reported by the readiness probe and may be nil.
type ServerDependencies struct {
	Repos       repository.Repositories
	Revocations auth.RevocationList
	Postgres    *persistence.Postgres
	Redis       *persistence.Redis
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// Server is the assembled devserver.
type Server struct {
	App      *fiber.App
	Activity *service.ActivityService
}

// NewServer wires services, handlers, middleware and routes over deps.
func NewServer(cfg *config.Config, deps ServerDependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := events.NewInMemoryDispatcher(logger)
	activity := service.NewActivityService(dispatcher, logger, 200)
	worker.StartActivityWorker(activity)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, deps.Repos.Staff, deps.Revocations, cfg.Auth.CookieName)

	authService := service.NewAuthService(service.AuthDependencies{
		StaffRepo:  deps.Repos.Staff,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		ConversationRepo: deps.Repos.Conversations,
		MessageRepo:      deps.Repos.Messages,
		Dispatcher:       dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: deps.Repos.Tickets,
		Dispatcher: dispatcher,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   deps.Repos.Tasks,
		Dispatcher: dispatcher,
	})
	staffService := service.NewStaffService(service.StaffDependencies{
		StaffRepo:  deps.Repos.Staff,
		Dispatcher: dispatcher,
	})
	dashboardService := service.NewDashboardService(deps.Repos)

	// Immutable: params and bodies outlive the request in repositories and events.
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		Immutable:             true,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, cfg.App.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Postgres, deps.Redis),
		Auth:           handlers.NewAuthHandler(authService, authMiddleware, cfg.Auth.CookieName, cfg.Auth.CookieSecure),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Chat:           handlers.NewChatHandler(chatService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Staff:          handlers.NewStaffHandler(staffService),
		AuthMiddleware: authMiddleware,
	})

	return &Server{App: app, Activity: activity}
}
