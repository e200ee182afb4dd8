// cmd/report-runner/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"order-insights/internal/common/aws"
	"order-insights/internal/common/config"
	"order-insights/internal/common/database"
	"order-insights/internal/common/logger"
	"order-insights/internal/common/observability"
	"order-insights/internal/report"
	"order-insights/internal/report/sheets"
)

const serviceName = "report-runner"

// One-shot report run, intended to be invoked on a schedule (cron or an
// equivalent scheduler). Section failures are recorded in the run summary
// rather than failing the process; only setup errors are fatal.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting report run...",
		zap.String("version", cfg.App.Version),
		zap.Int("windowDays", cfg.Reporting.WindowDays),
	)

	obs := observability.New(serviceName)
	defer obs.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis failed", zap.Error(err))
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		zapLog.Fatal("redis ping failed", zap.Error(err))
	}

	sheetsClient := sheets.NewClient(&sheets.Config{
		BaseURL:       cfg.APIs.Sheets.BaseURL,
		APIKey:        cfg.APIs.Sheets.APIKey,
		SpreadsheetID: cfg.APIs.Sheets.SpreadsheetID,
		Timeout:       config.GetDuration(cfg.APIs.Sheets.Timeout),
	})

	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}

	generator := report.NewGenerator(
		&report.Config{
			WindowDays:    cfg.Reporting.WindowDays,
			AlertRowLimit: cfg.Reporting.AlertRowLimit,
			QueryTimeout:  config.GetDuration(cfg.Reporting.QueryTimeout),
			EmailEnabled:  cfg.Notifications.Email.Enabled,
			FromEmail:     cfg.Notifications.Email.FromEmail,
			Recipient:     cfg.Notifications.Email.Recipient,
		},
		pg.DB, sheetsClient, sesClient, redisClient.Client, log,
	)

	summary, err := generator.Run(ctx)
	if err != nil {
		zapLog.Fatal("report run failed", zap.Error(err))
	}

	zapLog.Info("Report run finished",
		zap.Time("generatedAt", summary.GeneratedAt),
		zap.Any("sectionRows", summary.SectionRows),
		zap.Strings("failures", summary.Failures),
		zap.Int("alerts", summary.AlertCount),
		zap.Bool("emailSent", summary.EmailSent),
	)
}
