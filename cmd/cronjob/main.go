package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/jobs"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/scheduler"
	"clubhub-backend/internal/service"
	"clubhub-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'deliver-notifications', 'send-event-reminders', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Clubhub Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Repositories
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Initialize delivery channels
	channels, err := deliveryChannels(ctx, cfg.Delivery)
	if err != nil {
		logger.Error("Failed to initialize delivery channels", "error", err)
		log.Fatalf("Failed to initialize delivery channels: %v", err)
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, channels, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

func deliveryChannels(ctx context.Context, cfg config.DeliveryConfig) ([]service.DeliveryChannel, error) {
	var channels []service.DeliveryChannel
	if cfg.EmailEnabled {
		channels = append(channels, service.NewEmailService(cfg.SendGridAPIKey, cfg.FromAddress, cfg.FromName))
		logger.Info("Email delivery enabled", "from", cfg.FromAddress)
	}
	if cfg.PushEnabled {
		push, err := service.NewPushService(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredsFile)
		if err != nil {
			return nil, err
		}
		channels = append(channels, push)
		logger.Info("Push delivery enabled", "project", cfg.FirebaseProjectID)
	}
	return channels, nil
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "deliver-notifications":
		jobRunner.DeliverPendingNotifications()
	case "send-event-reminders":
		jobRunner.SendEventReminders()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - deliver-notifications\n")
		fmt.Printf("  - send-event-reminders\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
