package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gulfassure/quoting-api/internal/auth"
	"github.com/gulfassure/quoting-api/internal/config"
	"github.com/gulfassure/quoting-api/internal/database"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/http/handler"
	"github.com/gulfassure/quoting-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/gulfassure/quoting-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	quoteHandler        *handler.QuoteHandler
	assignmentHandler   *handler.AssignmentHandler
	auditHandler        *handler.AuditHandler
	notificationHandler *handler.NotificationHandler
	renewalHandler      *handler.RenewalHandler
	discountHandler     *handler.DiscountHandler
	documentHandler     *handler.DocumentHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	quoteHandler *handler.QuoteHandler,
	assignmentHandler *handler.AssignmentHandler,
	auditHandler *handler.AuditHandler,
	notificationHandler *handler.NotificationHandler,
	renewalHandler *handler.RenewalHandler,
	discountHandler *handler.DiscountHandler,
	documentHandler *handler.DocumentHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		quoteHandler:        quoteHandler,
		assignmentHandler:   assignmentHandler,
		auditHandler:        auditHandler,
		notificationHandler: notificationHandler,
		renewalHandler:      renewalHandler,
		discountHandler:     discountHandler,
		documentHandler:     documentHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required). Login is IP-throttled to slow
		// credential stuffing.
		r.With(rt.rateLimiter.LimitByIP).Post("/auth/login", rt.authHandler.Login)

		// Protected routes, throttled per user once authenticated
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.Post("/", rt.quoteHandler.Create)
				r.Get("/stats", rt.quoteHandler.GetStats)
				r.With(rt.authMiddleware.RequireAtLeast(domain.RoleSupervisor)).
					Get("/export", rt.quoteHandler.Export)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.Put("/{id}", rt.quoteHandler.Update)
				r.Get("/{id}/audit", rt.quoteHandler.GetAuditTrail)

				// Lifecycle endpoints
				r.Post("/{id}/request-exception", rt.quoteHandler.RequestException)
				r.With(rt.authMiddleware.RequireAtLeast(domain.RoleCreditControl)).
					Post("/{id}/approve", rt.quoteHandler.GrantApproval)
				r.With(rt.authMiddleware.RequireAtLeast(domain.RoleCreditControl)).
					Post("/{id}/reject-approval", rt.quoteHandler.RejectApproval)
				r.Post("/{id}/send-payment-link", rt.quoteHandler.SendPaymentLink)
				r.Post("/{id}/link-clicked", rt.quoteHandler.LinkClicked)
				r.Post("/{id}/docs-uploaded", rt.quoteHandler.DocsUploaded)
				r.Post("/{id}/payment-started", rt.quoteHandler.PaymentStarted)
				r.Post("/{id}/confirm-payment", rt.quoteHandler.ConfirmPayment)

				// Documents
				r.Get("/{id}/documents", rt.documentHandler.ListForQuote)
				r.Post("/{id}/documents", rt.documentHandler.Upload)
			})

			// Documents
			r.Get("/documents/{id}/download", rt.documentHandler.Download)

			// Assignments
			r.Route("/assignments", func(r chi.Router) {
				r.With(rt.authMiddleware.RequireAtLeast(domain.RoleSupervisor)).
					Post("/assign", rt.assignmentHandler.AssignMany)
				r.Get("/pool", rt.assignmentHandler.GetPool)
				r.Get("/mine", rt.assignmentHandler.GetMine)
				r.Post("/{id}/claim", rt.assignmentHandler.Claim)
				r.Post("/{id}/reject", rt.assignmentHandler.Reject)
				r.Post("/{id}/complete", rt.assignmentHandler.Complete)
				r.Post("/{id}/notes", rt.assignmentHandler.AddNote)
			})

			// Renewals
			r.Route("/renewals", func(r chi.Router) {
				r.Get("/", rt.renewalHandler.List)
				r.With(rt.authMiddleware.RequireAtLeast(domain.RoleSupervisor)).
					Post("/scan", rt.renewalHandler.TriggerScan)
				r.Put("/{policyNumber}/renewed", rt.renewalHandler.MarkRenewed)
				r.Put("/{policyNumber}/declined", rt.renewalHandler.MarkDeclined)
			})

			// Staff discount codes
			r.Route("/discounts", func(r chi.Router) {
				r.With(rt.authMiddleware.RequireAtLeast(domain.RoleSupervisor)).
					Post("/allocate", rt.discountHandler.Allocate)
				r.Get("/mine", rt.discountHandler.ListMine)
				r.Post("/redeem", rt.discountHandler.Redeem)
			})

			// Audit logs
			r.Route("/audit", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAtLeast(domain.RoleSupervisor))
				r.Get("/", rt.auditHandler.List)
				r.Get("/stats", rt.auditHandler.GetStats)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
			})
		})
	})

	return r
}
