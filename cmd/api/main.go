package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/billing-api/docs"
	"github.com/straye-as/billing-api/internal/auth"
	"github.com/straye-as/billing-api/internal/config"
	"github.com/straye-as/billing-api/internal/database"
	"github.com/straye-as/billing-api/internal/http/handler"
	"github.com/straye-as/billing-api/internal/http/middleware"
	"github.com/straye-as/billing-api/internal/http/router"
	"github.com/straye-as/billing-api/internal/jobs"
	"github.com/straye-as/billing-api/internal/logger"
	"github.com/straye-as/billing-api/internal/metrics"
	"github.com/straye-as/billing-api/internal/notify"
	"github.com/straye-as/billing-api/internal/reminder"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/service"
	"github.com/straye-as/billing-api/internal/storage"
	"github.com/straye-as/billing-api/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title Straye Billing API
// @version 1.0
// @description Client, project and invoice management API with scheduled reminders
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

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

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// The database is only needed when records are kept in the collections table
	var db *gorm.DB
	if cfg.Storage.Mode == "database" {
		db, err = database.NewDatabase(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() { _ = database.Close(db) }()

		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	backend, err := storage.NewBackend(&cfg.Storage, db, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	recordStore := store.New(backend, log)

	// Initialize repositories
	clientRepo := repository.NewClientRepository(recordStore)
	projectRepo := repository.NewProjectRepository(recordStore)
	invoiceRepo := repository.NewInvoiceRepository(recordStore)
	notificationRepo := repository.NewNotificationRepository(recordStore)
	userRepo := repository.NewUserRepository(recordStore)

	// Initialize services
	tokens := auth.NewTokenManager(&cfg.Auth)
	clientService := service.NewClientService(clientRepo, projectRepo, invoiceRepo, cfg.Clients.CaseInsensitiveEmail, log)
	projectService := service.NewProjectService(projectRepo, clientRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, projectRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, cfg.Notifications.Retention(), log)
	statsService := service.NewStatsService(clientRepo, projectRepo, invoiceRepo, notificationRepo, log)
	calendarService := service.NewCalendarService(projectRepo, invoiceRepo)
	authService := service.NewAuthService(userRepo, tokens, cfg.Auth.AllowRegistration, log)

	appMetrics := metrics.New(log)

	// Reminder engine
	channels := notify.NewChannels(cfg)
	engine := reminder.NewEngine(
		projectRepo,
		invoiceRepo,
		clientRepo,
		notificationService,
		channels,
		reminder.Options{
			OwnerEmail:      cfg.Notifications.OwnerEmail,
			OwnerWhatsApp:   cfg.Notifications.OwnerWhatsApp,
			DeadlineWindows: cfg.Notifications.DeadlineWindowDays,
			Recorder:        appMetrics,
		},
		log,
	)
	log.Info("Reminder engine initialized", zap.Int("channels", len(channels)))

	// Initialize handlers
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Client:       handler.NewClientHandler(clientService, log),
		Project:      handler.NewProjectHandler(projectService, statsService, log),
		Invoice:      handler.NewInvoiceHandler(invoiceService, statsService, log),
		Notification: handler.NewNotificationHandler(notificationService, log),
		Dashboard:    handler.NewDashboardHandler(statsService, calendarService, log),
		Reminder:     handler.NewReminderHandler(engine, log),
	}

	authMiddleware := auth.NewMiddleware(tokens, cfg.Auth.ApiKey, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, recordStore, db, appMetrics, authMiddleware, rateLimiter, handlers)

	// Scheduled reminder sweeps
	var scheduler *jobs.Scheduler
	if cfg.Notifications.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterReminderJobs(scheduler, engine, &cfg.Notifications, log); err != nil {
			return fmt.Errorf("failed to register reminder jobs: %w", err)
		}
		scheduler.Start()
		log.Info("Scheduler started with reminder jobs",
			zap.Strings("jobs", scheduler.GetJobNames()),
			zap.Duration("timeout", cfg.Notifications.JobTimeoutDuration()),
		)
	} else {
		log.Info("Reminder scheduling disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
