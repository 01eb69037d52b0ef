package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/billing-api/internal/auth"
	"github.com/straye-as/billing-api/internal/config"
	"github.com/straye-as/billing-api/internal/database"
	"github.com/straye-as/billing-api/internal/http/handler"
	"github.com/straye-as/billing-api/internal/http/middleware"
	"github.com/straye-as/billing-api/internal/metrics"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/billing-api/docs" // Import generated swagger docs
)

// Pinger checks that the record store backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth         *handler.AuthHandler
	Client       *handler.ClientHandler
	Project      *handler.ProjectHandler
	Invoice      *handler.InvoiceHandler
	Notification *handler.NotificationHandler
	Dashboard    *handler.DashboardHandler
	Reminder     *handler.ReminderHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	store          Pinger
	db             *gorm.DB
	metrics        *metrics.Metrics
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

// NewRouter builds the router. db may be nil when the store does not use a database backend;
// m may be nil to disable /metrics.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	store Pinger,
	db *gorm.DB,
	m *metrics.Metrics,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		store:          store,
		db:             db,
		metrics:        m,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness check (store backend and, when configured, the database)
	r.Get("/health/ready", rt.ready)

	if rt.metrics != nil && rt.cfg.Server.EnableMetrics {
		r.Handle("/metrics", rt.metrics.Handler())
	}

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.handlers

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.With(rt.rateLimiter.LimitCredentials).Post("/auth/register", h.Auth.Register)
		r.With(rt.rateLimiter.LimitCredentials).Post("/auth/login", h.Auth.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Get("/auth/me", h.Auth.Me)

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.Client.List)
				r.Post("/", h.Client.Create)
				r.Get("/{id}", h.Client.GetByID)
				r.Put("/{id}", h.Client.Update)
				r.Delete("/{id}", h.Client.Delete)
				r.Post("/{id}/refresh-stats", h.Client.RefreshStats)
			})

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.Project.List)
				r.Post("/", h.Project.Create)
				r.Get("/stats/overview", h.Project.Stats)
				r.Get("/{id}", h.Project.GetByID)
				r.Put("/{id}", h.Project.Update)
				r.Delete("/{id}", h.Project.Delete)
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", h.Invoice.List)
				r.Post("/", h.Invoice.Create)
				r.Get("/stats/overview", h.Invoice.Stats)
				r.Get("/{id}", h.Invoice.GetByID)
				r.Put("/{id}", h.Invoice.Update)
				r.Put("/{id}/status", h.Invoice.UpdateStatus)
				r.Delete("/{id}", h.Invoice.Delete)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Post("/", h.Notification.Create)
				r.Get("/count", h.Notification.Count)
				r.Put("/read-all", h.Notification.MarkAllAsRead)
				r.Get("/{id}", h.Notification.GetByID)
				r.Put("/{id}/read", h.Notification.MarkAsRead)
				r.Put("/{id}/archive", h.Notification.Archive)
				r.Delete("/{id}", h.Notification.Delete)
			})

			// Dashboard & calendar
			r.Get("/dashboard/stats", h.Dashboard.GetStats)
			r.Get("/calendar", h.Dashboard.Calendar)

			// Reminder sweeps (admin)
			r.With(rt.authMiddleware.RequireAdmin).Post("/reminders/{job}/run", h.Reminder.Run)
		})
	})

	return r
}

func (rt *Router) ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	check := func(name string, err error) {
		if err != nil {
			rt.logger.Error("health check failed", zap.String("service", name), zap.Error(err))
			checks[name] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
			return
		}
		checks[name] = map[string]interface{}{"status": "healthy"}
	}

	check("storage", rt.store.Ping(r.Context()))
	if rt.db != nil {
		check("database", database.HealthCheck(r.Context(), rt.db))
	}

	status, label := http.StatusOK, "healthy"
	if !allHealthy {
		status, label = http.StatusServiceUnavailable, "unhealthy"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": label,
		"checks": checks,
	})
}
