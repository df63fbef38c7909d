package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yishak-cs/crm-insights/internal/database"
	"github.com/yishak-cs/crm-insights/internal/handlers"
	"github.com/yishak-cs/crm-insights/internal/kafka"
	"github.com/yishak-cs/crm-insights/internal/services"
	"github.com/yishak-cs/crm-insights/pkg/helper"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	config, err := helper.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := helper.NewLogger(config.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(config, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(config helper.Config, logger *zap.Logger) error {
	neo4jClient, err := database.NewNeo4jClient(config.Neo4j, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to Neo4j: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := neo4jClient.Close(ctx); err != nil {
			logger.Warn("error closing Neo4j connection", zap.Error(err))
		}
	}()

	if config.Import.OnStart {
		importer := database.NewCSVImporter(neo4jClient, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := importer.ImportAllData(ctx, config.Import.BaseURL); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		status, err := importer.GetImportStatus(ctx)
		if err != nil {
			return fmt.Errorf("failed to get import status: %w", err)
		}
		logger.Info("import status", zap.Any("counts", status))
	}

	// A nil publisher disables event publishing
	var publisher services.EventPublisher
	if len(config.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(config.Kafka.Brokers, config.Kafka.InsightsTopic, logger)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("error closing Kafka producer", zap.Error(err))
			}
		}()
		publisher = producer
		logger.Info("publishing insight events",
			zap.Strings("brokers", config.Kafka.Brokers),
			zap.String("topic", config.Kafka.InsightsTopic))
	}

	store := database.NewCustomerStore(neo4jClient)
	insightService := services.NewInsightService(store, publisher, logger)
	apiHandler := handlers.NewAPIHandler(insightService, logger, config.Server.LeadRankLimit)

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(apiHandler, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Server.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}
