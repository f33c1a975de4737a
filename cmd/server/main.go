package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	grpcapi "clubhub-backend/internal/api/grpc"
	httpapi "clubhub-backend/internal/api/http"
	"clubhub-backend/internal/broker"
	"clubhub-backend/internal/config"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/security"
	"clubhub-backend/internal/service"
	"clubhub-backend/internal/storage"
	"clubhub-backend/internal/telemetry"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Clubhub Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetHTTPAddress(), "grpc", cfg.GetGRPCAddress(), "storage", cfg.Storage.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Telemetry
	providers, err := telemetry.NewProviders(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to flush telemetry", "error", err)
		}
	}()

	// Initialize Repositories
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Initialize change stream
	var publisher service.ChangePublisher
	if kafkaPublisher := broker.NewKafkaPublisher(cfg.Broker.Brokers, cfg.Broker.Topic); kafkaPublisher != nil {
		logger.Info("Publishing changes to kafka", "brokers", cfg.Broker.Brokers, "topic", cfg.Broker.Topic)
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	} else {
		logger.Info("Kafka brokers not configured, change stream disabled")
	}

	// Initialize Services
	participationSvc := service.NewParticipationService(
		store,
		service.NewMembershipLedger(time.Now),
		service.NewEventRoster(time.Now),
		service.NewNotificationDispatcher(store),
		publisher,
	)
	notificationSvc := service.NewNotificationService(store)

	// Initialize HTTP API
	handler := httpapi.NewHandler(
		participationSvc,
		notificationSvc,
		store,
		security.NewTokenValidator(cfg.JWT.Secret, cfg.JWT.Issuer),
		cfg,
	)
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// gRPC health is optional; grpc_port 0 disables it.
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		healthServer := grpcapi.NewHealthServer(store, 15*time.Second)
		g.Go(func() error {
			return healthServer.Serve(gctx, lis)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped. Goodbye!")
}
