package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gulfassure/quoting-api/docs"
	"github.com/gulfassure/quoting-api/internal/auth"
	"github.com/gulfassure/quoting-api/internal/config"
	"github.com/gulfassure/quoting-api/internal/database"
	"github.com/gulfassure/quoting-api/internal/http/handler"
	"github.com/gulfassure/quoting-api/internal/http/middleware"
	"github.com/gulfassure/quoting-api/internal/http/router"
	"github.com/gulfassure/quoting-api/internal/jobs"
	"github.com/gulfassure/quoting-api/internal/logger"
	"github.com/gulfassure/quoting-api/internal/messaging"
	"github.com/gulfassure/quoting-api/internal/policybook"
	"github.com/gulfassure/quoting-api/internal/repository"
	"github.com/gulfassure/quoting-api/internal/service"
	"github.com/gulfassure/quoting-api/internal/storage"
	"go.uber.org/zap"
)

// @title GulfAssure Quoting API
// @version 1.0
// @description Internal API for motor insurance quoting, agent workflow, and renewals

// @contact.name IT Operations
// @contact.email it-ops@gulfassure.bh

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "quoting-staging.gulfassure.bh"
	case "production":
		docs.SwaggerInfo.Host = "quoting.gulfassure.bh"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	docStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize policy book connection (optional, read-only)
	// The app continues without it; renewal tracking just won't sync.
	var policyBook *policybook.Client
	if cfg.PolicyBook.Enabled {
		policyBook, err = policybook.NewClient(&cfg.PolicyBook, log)
		if err != nil {
			log.Warn("Policy book connection failed, continuing without it",
				zap.Error(err),
			)
		} else if policyBook != nil {
			log.Info("Policy book connected",
				zap.Int("max_open_conns", cfg.PolicyBook.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.PolicyBook.QueryTimeout),
			)
		}
	} else {
		log.Info("Policy book not configured, skipping")
	}

	// Initialize repositories
	quoteRepo := repository.NewQuoteRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	renewalRepo := repository.NewRenewalPolicyRepository(db)
	discountRepo := repository.NewDiscountCodeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	documentRepo := repository.NewQuoteDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Wrap the quote repository in the read cache
	cachedQuoteRepo := repository.NewCachedQuoteRepository(quoteRepo, log)

	// Initialize messaging sender
	var sender messaging.Sender
	switch cfg.Messaging.Mode {
	case "simulated":
		sender = messaging.NewSimulatedSender(log, cfg.Messaging.SimulatedLatency(), cfg.Messaging.SimulatedFailureRate)
	default:
		log.Warn("Unknown messaging mode, falling back to simulated sender",
			zap.String("mode", cfg.Messaging.Mode))
		sender = messaging.NewSimulatedSender(log, cfg.Messaging.SimulatedLatency(), cfg.Messaging.SimulatedFailureRate)
	}

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize services
	auditLogService := service.NewAuditLogService(auditLogRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	quoteService := service.NewQuoteService(cachedQuoteRepo, auditLogService, notificationService, sender, renewalRepo, cfg.Messaging.PaymentLinkBaseURL, log)
	assignmentService := service.NewAssignmentService(cachedQuoteRepo, auditLogService, notificationService, log)
	renewalService := service.NewRenewalService(renewalRepo, quoteService, sender, policyBook, log)
	discountService := service.NewDiscountService(discountRepo, cachedQuoteRepo, auditLogService, log)
	documentService := service.NewDocumentService(documentRepo, cachedQuoteRepo, docStorage, auditLogService, log)
	exportService := service.NewExportService(cachedQuoteRepo, auditLogService, log)
	authService := service.NewAuthService(userRepo, authMiddleware.TokenManager(), log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, exportService, auditLogService, log)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	renewalHandler := handler.NewRenewalHandler(renewalService, log)
	discountHandler := handler.NewDiscountHandler(discountService, log)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		quoteHandler,
		assignmentHandler,
		auditHandler,
		notificationHandler,
		renewalHandler,
		discountHandler,
		documentHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Renewal.Enabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterRenewalJob(
			scheduler,
			renewalService,
			log,
			cfg.Renewal.Schedule,
			cfg.Renewal.TimeoutDuration(),
			false,
		); err != nil {
			log.Error("Failed to register renewal scan job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started",
				zap.Strings("jobs", scheduler.GetJobNames()),
				zap.String("cron_expr", cfg.Renewal.Schedule),
				zap.Duration("timeout", cfg.Renewal.TimeoutDuration()),
			)
		}
	} else {
		log.Info("Renewal scan disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close policy book connection if initialized
		if policyBook != nil {
			if err := policyBook.Close(); err != nil {
				log.Warn("Error closing policy book connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
