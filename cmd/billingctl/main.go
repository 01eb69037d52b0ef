package main

import (
	"context"
	"fmt"
	"os"

	"github.com/straye-as/billing-api/internal/cli"
	"github.com/straye-as/billing-api/internal/config"
	"github.com/straye-as/billing-api/internal/database"
	"github.com/straye-as/billing-api/internal/logger"
	"github.com/straye-as/billing-api/internal/notify"
	"github.com/straye-as/billing-api/internal/reminder"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/service"
	"github.com/straye-as/billing-api/internal/storage"
	"github.com/straye-as/billing-api/internal/store"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	var db *gorm.DB
	if cfg.Storage.Mode == "database" {
		db, err = database.NewDatabase(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() { _ = database.Close(db) }()
	}

	backend, err := storage.NewBackend(&cfg.Storage, db, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	recordStore := store.New(backend, log)

	clientRepo := repository.NewClientRepository(recordStore)
	projectRepo := repository.NewProjectRepository(recordStore)
	invoiceRepo := repository.NewInvoiceRepository(recordStore)
	notificationRepo := repository.NewNotificationRepository(recordStore)

	notificationService := service.NewNotificationService(notificationRepo, cfg.Notifications.Retention(), log)
	engine := reminder.NewEngine(
		projectRepo,
		invoiceRepo,
		clientRepo,
		notificationService,
		notify.NewChannels(cfg),
		reminder.Options{
			OwnerEmail:      cfg.Notifications.OwnerEmail,
			OwnerWhatsApp:   cfg.Notifications.OwnerWhatsApp,
			DeadlineWindows: cfg.Notifications.DeadlineWindowDays,
		},
		log,
	)

	app := &cli.App{
		Sweeps:  engine,
		Stats:   service.NewStatsService(clientRepo, projectRepo, invoiceRepo, notificationRepo, log),
		Clients: service.NewClientService(clientRepo, projectRepo, invoiceRepo, cfg.Clients.CaseInsensitiveEmail, log),
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
