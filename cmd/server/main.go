package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "equiplend-backend/internal/api/http"
	"equiplend-backend/internal/config"
	"equiplend-backend/internal/logger"
	"equiplend-backend/internal/notify"
	"equiplend-backend/internal/repository/postgres"
	"equiplend-backend/internal/security"
	"equiplend-backend/internal/service"
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
	logger.Info("Starting Equiplend Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Notification Queue
	sinks := []notify.Sink{notify.NewInboxSink(store.Repos().Notifications)}
	if cfg.SendGrid.APIKey != "" {
		sender := service.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
		sinks = append(sinks, notify.NewEmailSink(sender, store.Repos().Members, cfg.SendGrid.StaffEmail))
	} else {
		logger.Warn("SendGrid API key not configured, email notifications disabled")
	}
	queue := notify.NewQueue(cfg.Notify.QueueSize, cfg.Notify.Workers, sinks, store.Repos().ItemHistory)
	queue.Start(context.Background())
	defer queue.Stop()

	// Initialize Services
	policy, err := service.PolicyFromConfig(cfg)
	if err != nil {
		logger.Error("Invalid policy configuration", "error", err)
		log.Fatalf("Invalid policy configuration: %v", err)
	}
	borrowSvc := service.NewBorrowService(store, policy, queue)
	ledgerSvc := service.NewLedgerService(store)
	equipmentSvc := service.NewEquipmentService(store)

	// Initialize HTTP handlers
	borrowHandler := httpapi.NewBorrowHandler(borrowSvc)
	ledgerHandler := httpapi.NewLedgerHandler(ledgerSvc)
	equipmentHandler := httpapi.NewEquipmentHandler(equipmentSvc)

	router := httpapi.NewRouter(borrowHandler, ledgerHandler, equipmentHandler, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start HTTP server in a goroutine so we can wait for shutdown signals
	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
