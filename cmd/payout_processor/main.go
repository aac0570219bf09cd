package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tradeworks-payout-ledger/internal/config"
	"github.com/tradeworks-payout-ledger/internal/data/mongo"
	"github.com/tradeworks-payout-ledger/internal/data/postgres"
	"github.com/tradeworks-payout-ledger/internal/logger"
	"github.com/tradeworks-payout-ledger/internal/orchestrator"
	"github.com/tradeworks-payout-ledger/internal/payout_processor/audit_poller"
	"github.com/tradeworks-payout-ledger/internal/payout_processor/consumer"
	"github.com/tradeworks-payout-ledger/internal/payout_processor/service"
	"github.com/tradeworks-payout-ledger/internal/platform/messaging/consumers"
	"github.com/tradeworks-payout-ledger/internal/platform/messaging/producers"
	"github.com/tradeworks-payout-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("payout_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Payout Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	eligibilityRepo := postgres.NewEligibilityRepository(log, postgresDB)
	payoutRequestRepo := postgres.NewPayoutRequestRepository(log, postgresDB)
	auditRepo := postgres.NewAuditRepository(log, postgresDB)
	trailRepo := mongo.NewAuditTrailRepository(log, mongoDB.Database())

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize the approval orchestrator; eligibility rows and audit events
	// are written through it
	approvals := orchestrator.New(
		postgresDB.Pool(),
		walletRepo,
		ledgerRepo,
		eligibilityRepo,
		payoutRequestRepo,
		auditRepo,
		log,
	)

	// Initialize intake service, wrapped in a worker pool
	baseIntake := service.NewIntakeService(approvals, log)
	workerPoolService, err := service.NewWorkerPoolIntakeService(
		baseIntake,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize completion event handler
	completionEventHandler := consumer.NewCompletionEventHandler(
		log,
		workerPoolService,
		dlqProducer,
	)

	// Initialize audit outbox poller
	trailPublisher := audit_poller.NewTrailPublisher(auditRepo, trailRepo, log)
	poller := audit_poller.NewPoller(&cfg.AuditOutbox, auditRepo, trailPublisher, log)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.CompletionTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.CompletionTopic, cfg.Kafka.ConsumerGroup, completionEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start audit outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Audit Outbox Poller",
			"interval", cfg.AuditOutbox.PollingInterval.String(),
			"batch_size", cfg.AuditOutbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool, draining in-flight intakes
	log.Info("Shutting down worker pool", "running_workers", workerPoolService.Running())
	workerPoolService.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Payout Processor shutdown with errors", "error", serviceErr)
	} else {
		log.Info("Payout Processor shutdown completed successfully")
	}
}
