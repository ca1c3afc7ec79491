package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tickbox/tickbox/internal/handler"
	"github.com/tickbox/tickbox/internal/metrics"
	"github.com/tickbox/tickbox/internal/middleware"
	"github.com/tickbox/tickbox/internal/service"
)

// RouterDeps holds everything the router wires together.
type RouterDeps struct {
	Logger *slog.Logger
	Users  *service.UserService
	Todos  *service.TodoService

	// Database is required for readiness; Cache is nil when disabled.
	Database handler.HealthChecker
	Cache    handler.HealthChecker

	Metrics     metrics.Recorder
	Snapshotter metrics.Snapshotter // nil disables /metrics

	CORS          middleware.CORSConfig
	MaxBodySize   int64
	IsDevelopment bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: deps.IsDevelopment}))
	r.Use(middleware.CORS(deps.CORS))
	if deps.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(deps.MaxBodySize))
	}

	healthHandler := handler.NewHealthHandler(deps.Database, deps.Cache, logger)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	if deps.Snapshotter != nil {
		r.Get("/metrics", handler.NewMetricsHandler(deps.Snapshotter).Metrics)
	}

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:   logger,
		Resolver: deps.Users,
		Metrics:  deps.Metrics,
	})

	userHandler := handler.NewUserHandler(deps.Users, logger)
	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.Register)
		r.Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", userHandler.Me)
			r.Delete("/me/token", userHandler.Logout)
		})
	})

	todoHandler := handler.NewTodoHandler(deps.Todos, logger)
	r.Route("/todos", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", todoHandler.Create)
		r.Get("/", todoHandler.List)
		r.Get("/{id}", todoHandler.Get)
		r.Delete("/{id}", todoHandler.Delete)
		r.Patch("/{id}", todoHandler.Update)
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
