// cmd/ingest-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"order-insights/internal/common/aws"
	"order-insights/internal/common/config"
	"order-insights/internal/common/database"
	"order-insights/internal/common/logger"
	"order-insights/internal/common/observability"
	"order-insights/internal/pipeline/classifyorder"
	"order-insights/internal/pipeline/enrichstore"
	"order-insights/internal/pipeline/escalate"
	"order-insights/internal/pipeline/ingest"
)

const serviceName = "ingest-server"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting ingest server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(serviceName)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init SNS client ---
	snsClient, err := aws.NewSNSClient(ctx, cfg.Escalation.AWSRegion)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}
	zapLog.Info("All external service clients initialized")

	// --- Wire the pipeline ---
	classifier := classifyorder.NewHandler(
		&classifyorder.Config{
			GenAIBaseURL: cfg.APIs.GenAI.BaseURL,
			APIKey:       cfg.APIs.GenAI.APIKey,
			Model:        cfg.APIs.GenAI.Model,
			Timeout:      config.GetDuration(cfg.APIs.GenAI.Timeout),
		},
		log,
	)

	store := enrichstore.NewHandler(
		&enrichstore.Config{
			InsertTimeout: config.GetDuration(cfg.Server.RequestTimeout),
		},
		pg.DB, log,
	)

	dispatcher := escalate.NewDispatcher(
		&escalate.Config{
			SNSTopicARN:    cfg.Escalation.SNSTopicARN,
			AWSRegion:      cfg.Escalation.AWSRegion,
			DashboardIndex: cfg.Database.Elasticsearch.DashboardIndex,
			Timeout:        config.GetDuration(cfg.Escalation.DispatchTimeout),
		},
		snsClient,
		escalate.NewESIndexer(esClient.Client),
		log,
	)

	gateway := ingest.NewGateway(
		&ingest.Config{
			RequestTimeout:     config.GetDuration(cfg.Server.RequestTimeout),
			EscalationTimeout:  config.GetDuration(cfg.Escalation.DispatchTimeout),
			DuplicateMarkerTTL: 24 * time.Hour,
		},
		classifier, store, dispatcher, redisClient.Client, log,
	)

	server, err := ingest.NewServer(serviceName, cfg.App.Version, gateway, log,
		ingest.ReadyCheck{Name: "postgres", Check: pg.Ping},
		ingest.ReadyCheck{Name: "redis", Check: redisClient.Ping},
	)
	if err != nil {
		zapLog.Fatal("server setup failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Ingest server stopped gracefully")
}
