package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"kudos/config"
	"kudos/database"
	"kudos/events"
	"kudos/jobs"
	"kudos/repository"
	"kudos/service"
	"kudos/slack"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg)
	log.Info("Starting kudos bot...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize repositories and unit of work factory
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	uowFactory := repository.NewUnitOfWorkFactory(db)

	// Initialize the Slack adapter and subscribe it as the delivery sink
	slackClient := slack.NewClient(workspaceRepo)
	slackClient.RegisterDelivery(eventBus)

	// Initialize services
	log.Info("Initializing services...")
	ledgerService := service.NewLedgerService(uowFactory)
	directoryService := service.NewDirectoryService(userRepo, slackClient)
	historyService := service.NewHistoryService(transactionRepo, directoryService)
	resetService := service.NewResetService(userRepo)
	router := service.NewEventRouter(cfg.TriggerPhrase, ledgerService, historyService, directoryService, workspaceRepo, slackClient)
	subscribeRouter(eventBus, router)
	log.Info("Services initialized successfully")

	// Start the daily reset scheduler
	scheduler := jobs.NewScheduler(resetService, eventBus, cfg.Location())
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down...")
	scheduler.Stop()

	// Give in-flight bus handlers time to finish before the pool closes
	time.Sleep(1 * time.Second)
	log.Info("Shutdown completed")

	return nil
}

// subscribeRouter feeds inbound events published on the bus through the
// router and publishes the resulting notifications for delivery
func subscribeRouter(bus *events.Bus, router service.EventRouter) {
	bus.Subscribe(events.EventTypeInbound, func(ctx context.Context, event events.Event) {
		inbound, ok := event.(events.InboundReceivedEvent)
		if !ok {
			log.WithField("eventType", event.Type()).Error("Unexpected event payload on inbound channel")
			return
		}

		notifications, err := router.HandleEvent(ctx, inbound.Event)
		if err != nil {
			log.WithFields(log.Fields{
				"kind":   inbound.Event.Kind,
				"teamID": inbound.Event.TeamID,
			}).WithError(err).Error("Failed to handle inbound event")
			return
		}

		for _, notification := range notifications {
			bus.Emit(ctx, events.NotificationEvent{
				TeamID:       inbound.Event.TeamID,
				Notification: notification,
			})
		}
	})
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
