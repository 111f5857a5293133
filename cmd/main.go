// Package main is the entry point for the application
// It initializes all components and starts the HTTP server
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pharmachain-service/config"
	httpDelivery "pharmachain-service/delivery/http"
	"pharmachain-service/domain/model"
	"pharmachain-service/identity/keycloak"
	"pharmachain-service/pkg/kafka"
	"pharmachain-service/pkg/logger"
	"pharmachain-service/pkg/metrics"
	"pharmachain-service/pkg/postgres"
	"pharmachain-service/pkg/redis"
	pgRepository "pharmachain-service/repository/postgres"
	"pharmachain-service/usecase"
)

// main is the entry point of the application
// It performs the following steps:
// 1. Initializes the logger
// 2. Loads configuration from files or environment variables
// 3. Sets up the database connection and runs migrations
// 4. Connects Redis, Kafka and the Keycloak admin API
// 5. Initializes the repository, usecase, and handler layers
// 6. Starts the outbox dispatcher
// 7. Starts the HTTP server with graceful shutdown
func main() {
	// configure logger
	appLogger := logger.NewJSONDefault()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize PostgreSQL client
	postgresClient, err := postgres.NewPostgresClient(postgres.Config{
		Host:            cfg.Infrastructure.Postgres.Host,
		Port:            cfg.Infrastructure.Postgres.Port,
		User:            cfg.Infrastructure.Postgres.User,
		Password:        cfg.Infrastructure.Postgres.Password,
		DBName:          cfg.Infrastructure.Postgres.DBName,
		Schema:          cfg.Infrastructure.Postgres.Schema,
		SSLMode:         cfg.Infrastructure.Postgres.SSLMode,
		MaxIdleConns:    cfg.Infrastructure.Postgres.MaxIdleConns,
		MaxOpenConns:    cfg.Infrastructure.Postgres.MaxOpenConns,
		ConnMaxIdleTime: cfg.Infrastructure.Postgres.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Infrastructure.Postgres.ConnMaxLifetime,
		Debug:           cfg.Infrastructure.Postgres.Debug,
	})
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.Infrastructure.Postgres.IsUseMigrate {
		// Run database migrations
		err = postgresClient.Migrate(
			&model.Admin{},
			&model.Manager{},
			&model.Driver{},
			&model.Client{},
			&model.Bordereau{},
			&model.DeliveryItem{},
			&model.BordereauTransfer{},
			&model.OutboxEntry{},
		)
		if err != nil {
			appLogger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Redis client
	redisClient, redisErr := redis.New(
		redis.WithAddrs(cfg.Infrastructure.Redis.Addrs),
		redis.WithUsername(cfg.Infrastructure.Redis.Username),
		redis.WithPassword(cfg.Infrastructure.Redis.Password),
		redis.WithDB(cfg.Infrastructure.Redis.DB),
		redis.WithPoolSize(cfg.Infrastructure.Redis.PoolSize),
	)
	if redisErr != nil {
		appLogger.Error("Failed to initialize Redis client", "error", redisErr)
		os.Exit(1)
	}
	scanLocker := redis.NewLocker(redisClient)

	// Initialize Kafka client
	kafkaClient, kafkaErr := kafka.New(
		kafka.WithBrokers(cfg.Infrastructure.Kafka.Brokers...),
	)
	if kafkaErr != nil {
		appLogger.Error("Failed to initialize Kafka client", "error", kafkaErr)
		os.Exit(1)
	}

	// Initialize Keycloak admin service
	keycloakAdmin := keycloak.NewAdminService(keycloak.Config{
		BaseURL:           cfg.Identity.Keycloak.BaseURL,
		Realm:             cfg.Identity.Keycloak.Realm,
		AdminClientID:     cfg.Identity.Keycloak.AdminClientID,
		AdminClientSecret: cfg.Identity.Keycloak.AdminClientSecret,
		Timeout:           time.Duration(cfg.Identity.Keycloak.Timeout) * time.Second,
		RetryCount:        cfg.Identity.Keycloak.RetryCount,
	}, appLogger)

	// Initialize metrics
	appMetrics := metrics.NewMetrics("pharmachain")

	// Initialize repository
	db := postgresClient.GetDB()
	adminRepo := pgRepository.NewAdminRepository(db, appLogger)
	managerRepo := pgRepository.NewManagerRepository(db, appLogger)
	driverRepo := pgRepository.NewDriverRepository(db, appLogger)
	clientRepo := pgRepository.NewClientRepository(db, appLogger)
	bordereauRepo := pgRepository.NewBordereauRepository(db, appLogger)
	itemRepo := pgRepository.NewDeliveryItemRepository(db, appLogger)
	transferRepo := pgRepository.NewTransferRepository(db, appLogger)
	outboxRepo := pgRepository.NewOutboxRepository(db, appLogger)
	transactor := pgRepository.NewTransactor(db)

	syncTopic := cfg.Infrastructure.Kafka.Topics.IdentitySync

	// Initialize usecase
	scanUsecase := usecase.NewScanUseCase(bordereauRepo, itemRepo, driverRepo, managerRepo, clientRepo, scanLocker, appMetrics, appLogger)
	bordereauUsecase := usecase.NewBordereauUseCase(bordereauRepo, itemRepo, driverRepo, managerRepo, appLogger)
	itemUsecase := usecase.NewDeliveryItemUseCase(itemRepo, appLogger)
	transferUsecase := usecase.NewTransferUseCase(transferRepo, bordereauRepo, driverRepo, appLogger)
	clientUsecase := usecase.NewClientUseCase(clientRepo, managerRepo, appLogger)
	adminUsecase := usecase.NewAdminUseCase(adminRepo, transactor, keycloakAdmin, outboxRepo, appMetrics, appLogger, syncTopic)
	managerUsecase := usecase.NewManagerUseCase(managerRepo, adminRepo, driverRepo, clientRepo, bordereauRepo, transactor, keycloakAdmin, outboxRepo, appMetrics, appLogger, syncTopic)
	driverUsecase := usecase.NewDriverUseCase(driverRepo, managerRepo, bordereauRepo, itemRepo, transactor, keycloakAdmin, outboxRepo, appMetrics, appLogger, syncTopic)

	// Initialize outbox dispatcher
	dispatcher := usecase.NewOutboxDispatcher(
		outboxRepo,
		kafkaClient,
		appMetrics,
		appLogger,
		time.Duration(cfg.Outbox.Interval)*time.Second,
		cfg.Outbox.BatchSize,
		cfg.Outbox.MaxAttempts,
	)

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	go dispatcher.Run(dispatcherCtx)

	// Initialize handlers
	bordereauHandler := httpDelivery.NewBordereauHandler(scanUsecase, bordereauUsecase, appLogger)
	itemHandler := httpDelivery.NewDeliveryItemHandler(itemUsecase, appLogger)
	transferHandler := httpDelivery.NewTransferHandler(transferUsecase, appLogger)
	adminHandler := httpDelivery.NewAdminHandler(adminUsecase, appLogger)
	managerHandler := httpDelivery.NewManagerHandler(managerUsecase, appLogger)
	driverHandler := httpDelivery.NewDriverHandler(driverUsecase, appLogger)
	clientHandler := httpDelivery.NewClientHandler(clientUsecase, appLogger)
	healthHandler := httpDelivery.NewHealthHandler(appLogger)

	// Initialize router
	router := httpDelivery.NewRouter(bordereauHandler, itemHandler, transferHandler, adminHandler, managerHandler, driverHandler, clientHandler, healthHandler, appLogger)

	// Setup routes
	httpHandler := router.SetupRoutes()

	// Start server
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Create channel to listen for interrupt signal
	quit := make(chan os.Signal, 1)

	// Register the channel to receive specific signals
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a separate goroutine
	go func() {
		appLogger.Info("Service starting", "name", cfg.Application.Name, "version", cfg.Application.Version, "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit
	appLogger.Info("Shutting down server...")

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Shutdown the server gracefully
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Stop the outbox dispatcher
	stopDispatcher()

	// Close infrastructure connections
	if err := kafkaClient.Close(); err != nil {
		appLogger.Warn("Error closing Kafka client", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		appLogger.Warn("Error closing Redis connection", "error", err)
	}

	// Close database connection
	if err := postgresClient.Close(); err != nil {
		appLogger.Warn("Error closing database connection", "error", err)
	}

	appLogger.Info("Server exited")
}
