// internal/report/generator.go
package report

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"order-insights/internal/common/logger"
	"order-insights/internal/common/metrics"
	"order-insights/internal/models"
	"order-insights/internal/report/queries"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/redis/go-redis/v9"
)

const lastUpdatedKey = "report:last_updated"

// Column positions of the risk score and priority in the orders grid.
const (
	ordersRiskColumn     = 4
	ordersPriorityColumn = 5
)

// SheetWriter is the presentation surface for report grids.
type SheetWriter interface {
	ClearAndWrite(ctx context.Context, grid string, header []string, rows [][]string) error
	SetBandFormat(ctx context.Context, grid string, column int, colors map[string]string) error
}

// EmailSender dispatches the alert notification.
type EmailSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Config struct {
	WindowDays    int
	AlertRowLimit int
	QueryTimeout  time.Duration
	EmailEnabled  bool
	FromEmail     string
	Recipient     string
}

// Generator recomputes every report section from the warehouse on each run.
// There is no incremental state: a run reads the full rolling window.
type Generator struct {
	config *Config
	db     *sql.DB
	sheets SheetWriter
	email  EmailSender
	redis  *redis.Client
	logger logger.Logger
}

func NewGenerator(config *Config, db *sql.DB, sheets SheetWriter, email EmailSender, redisClient *redis.Client, log logger.Logger) *Generator {
	return &Generator{
		config: config,
		db:     db,
		sheets: sheets,
		email:  email,
		redis:  redisClient,
		logger: log.WithFields(map[string]interface{}{"component": "report-generator"}),
	}
}

// RunSummary describes one completed run for the caller's logs.
type RunSummary struct {
	GeneratedAt time.Time
	SectionRows map[string]int
	Failures    []string
	AlertCount  int
	EmailSent   bool
}

// Run executes all four sections concurrently, writes the grids, sends the
// alert email when the alert set is non-empty, and stamps the last-updated
// key. Sections are isolated: one failing query renders that section empty
// and the others still complete.
func (g *Generator) Run(ctx context.Context) (*RunSummary, error) {
	now := time.Now().UTC()
	window := queries.Window{
		From: now.AddDate(0, 0, -g.config.WindowDays),
		To:   now,
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		snapshots = make(map[string]*models.ReportSnapshot, 4)
		failures  []string
		alerts    []models.AlertRow
	)

	record := func(name string, snapshot *models.ReportSnapshot, err error) {
		mu.Lock()
		defer mu.Unlock()
		snapshots[name] = snapshot
		if err != nil {
			failures = append(failures, name)
		}
	}

	for _, section := range []string{"orders", "interactions", "analytics"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			snapshot, err := g.runSection(ctx, name, window)
			record(name, snapshot, err)
		}(section)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		snapshot, rows, err := g.runAlerts(ctx, window)
		record("alerts", snapshot, err)
		mu.Lock()
		alerts = rows
		mu.Unlock()
	}()

	wg.Wait()

	for _, name := range []string{"orders", "interactions", "analytics", "alerts"} {
		g.writeSnapshot(ctx, snapshots[name])
	}

	emailSent := false
	if len(alerts) > 0 {
		if err := g.sendAlertEmail(ctx, alerts); err != nil {
			g.logger.Error("alert email failed", map[string]interface{}{
				"alerts": len(alerts),
				"error":  err.Error(),
			})
		} else {
			emailSent = g.config.EmailEnabled
		}
	}

	g.stampLastUpdated(ctx, now)

	summary := &RunSummary{
		GeneratedAt: now,
		SectionRows: make(map[string]int, len(snapshots)),
		Failures:    failures,
		AlertCount:  len(alerts),
		EmailSent:   emailSent,
	}
	for name, snapshot := range snapshots {
		summary.SectionRows[name] = len(snapshot.Rows)
	}

	g.logger.Info("report run complete", map[string]interface{}{
		"windowDays": g.config.WindowDays,
		"sections":   summary.SectionRows,
		"failures":   failures,
		"alerts":     len(alerts),
		"emailSent":  emailSent,
	})

	return summary, nil
}

// runSection executes one registry query under its own timeout. A failure
// yields an empty, still-timestamped snapshot.
func (g *Generator) runSection(ctx context.Context, name string, window queries.Window) (*models.ReportSnapshot, error) {
	sctx, cancel := context.WithTimeout(ctx, g.config.QueryTimeout)
	defer cancel()

	header, rows, err := queries.Execute(sctx, g.db, name, window)
	if err != nil {
		metrics.ReportSectionFailures.WithLabelValues(name).Inc()
		g.logger.Error("report section failed", map[string]interface{}{
			"section": name,
			"error":   err.Error(),
		})
		return &models.ReportSnapshot{Name: name, GeneratedAt: time.Now().UTC()}, err
	}

	if name == "orders" {
		header, rows = withOrderBands(header, rows)
	}

	return &models.ReportSnapshot{
		Name:        name,
		GeneratedAt: time.Now().UTC(),
		Header:      header,
		Rows:        rows,
	}, nil
}

// runAlerts merges the two alert queries into the alerts grid. An empty alert
// set renders an explicit "no alerts" row rather than an empty grid.
func (g *Generator) runAlerts(ctx context.Context, window queries.Window) (*models.ReportSnapshot, []models.AlertRow, error) {
	sctx, cancel := context.WithTimeout(ctx, g.config.QueryTimeout)
	defer cancel()

	header := []string{"Kind", "Reference", "Detail", "Score", "Timestamp", "Band"}

	highRisk, err := queries.HighRiskOrders(sctx, g.db, window, RiskBandHighAbove)
	if err == nil {
		var fraudFlagged []models.AlertRow
		fraudFlagged, err = queries.FraudFlaggedOrders(sctx, g.db, window)
		if err == nil {
			merged := MergeAlertRows(highRisk, fraudFlagged, g.config.AlertRowLimit)

			rows := make([][]string, 0, len(merged))
			for _, alert := range merged {
				rows = append(rows, []string{
					alert.Kind,
					alert.Reference,
					alert.Detail,
					fmt.Sprintf("%.2f", alert.Score),
					alert.Timestamp.Format(time.RFC3339),
					RiskBand(alert.Score),
				})
			}
			if len(rows) == 0 {
				rows = [][]string{{"no alerts", "", "", "", "", ""}}
			}

			return &models.ReportSnapshot{
				Name:        "alerts",
				GeneratedAt: time.Now().UTC(),
				Header:      header,
				Rows:        rows,
			}, merged, nil
		}
	}

	metrics.ReportSectionFailures.WithLabelValues("alerts").Inc()
	g.logger.Error("report section failed", map[string]interface{}{
		"section": "alerts",
		"error":   err.Error(),
	})
	return &models.ReportSnapshot{Name: "alerts", GeneratedAt: time.Now().UTC()}, nil, err
}

func (g *Generator) writeSnapshot(ctx context.Context, snapshot *models.ReportSnapshot) {
	if err := g.sheets.ClearAndWrite(ctx, snapshot.Name, snapshot.Header, snapshot.Rows); err != nil {
		g.logger.Error("grid write failed", map[string]interface{}{
			"section": snapshot.Name,
			"error":   err.Error(),
		})
		return
	}

	switch snapshot.Name {
	case "orders":
		g.applyBandFormat(ctx, snapshot.Name, len(snapshot.Header)-1)
	case "alerts":
		g.applyBandFormat(ctx, snapshot.Name, 5)
	}
}

func (g *Generator) applyBandFormat(ctx context.Context, grid string, column int) {
	if err := g.sheets.SetBandFormat(ctx, grid, column, BandColors); err != nil {
		g.logger.Warn("band format failed", map[string]interface{}{
			"section": grid,
			"error":   err.Error(),
		})
	}
}

// sendAlertEmail sends exactly one notification summarizing the alert set.
func (g *Generator) sendAlertEmail(ctx context.Context, alerts []models.AlertRow) error {
	if !g.config.EmailEnabled {
		g.logger.Info("alert email disabled", map[string]interface{}{
			"alerts": len(alerts),
		})
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%d alert(s) in the current reporting window:\n\n", len(alerts))
	for _, alert := range alerts {
		fmt.Fprintf(&body, "- [%s] %s (score %.2f): %s\n",
			alert.Kind, alert.Reference, alert.Score, alert.Detail)
	}

	_, err := g.email.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{g.config.Recipient},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data: aws.String(fmt.Sprintf("Order risk alerts: %d", len(alerts))),
			},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body.String())},
			},
		},
		Source: aws.String(g.config.FromEmail),
	})
	return err
}

func (g *Generator) stampLastUpdated(ctx context.Context, now time.Time) {
	if g.redis == nil {
		return
	}
	if err := g.redis.Set(ctx, lastUpdatedKey, now.Format(time.RFC3339), 0).Err(); err != nil {
		g.logger.Warn("last-updated stamp failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// withOrderBands appends the presentation band column to the orders grid.
func withOrderBands(header []string, rows [][]string) ([]string, [][]string) {
	header = append(header, "Band")
	for i, row := range rows {
		band := ""
		if len(row) > ordersPriorityColumn {
			risk, err := strconv.ParseFloat(row[ordersRiskColumn], 64)
			if err == nil {
				band = Band(risk, row[ordersPriorityColumn])
			}
		}
		rows[i] = append(row, band)
	}
	return header, rows
}
