// internal/report/queries/alerts.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"order-insights/internal/models"

	"github.com/lib/pq"
)

// HighRiskOrders returns one AlertRow per order whose risk score strictly
// exceeds the threshold.
func HighRiskOrders(ctx context.Context, db *sql.DB, window Window, threshold float64) ([]models.AlertRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT order_number, summary, risk_score, processed_at
		FROM enriched_orders
		WHERE processed_at >= $1 AND processed_at < $2 AND risk_score > $3
		ORDER BY processed_at DESC`,
		window.From, window.To, threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("high risk query: %w", err)
	}
	defer rows.Close()

	var alerts []models.AlertRow
	for rows.Next() {
		var orderNumber, summary string
		var riskScore float64
		var processedAt time.Time

		if err := rows.Scan(&orderNumber, &summary, &riskScore, &processedAt); err != nil {
			return nil, fmt.Errorf("high risk scan: %w", err)
		}

		alerts = append(alerts, models.AlertRow{
			Kind:      models.AlertHighRiskOrder,
			Reference: orderNumber,
			Detail:    summary,
			Score:     riskScore,
			Timestamp: processedAt.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("high risk rows: %w", err)
	}

	return alerts, nil
}

// FraudFlaggedOrders returns one AlertRow per order carrying fraud flags.
func FraudFlaggedOrders(ctx context.Context, db *sql.DB, window Window) ([]models.AlertRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT order_number, fraud_flags, risk_score, processed_at
		FROM enriched_orders
		WHERE processed_at >= $1 AND processed_at < $2
		  AND array_length(fraud_flags, 1) > 0
		ORDER BY processed_at DESC`,
		window.From, window.To,
	)
	if err != nil {
		return nil, fmt.Errorf("fraud flag query: %w", err)
	}
	defer rows.Close()

	var alerts []models.AlertRow
	for rows.Next() {
		var orderNumber string
		var fraudFlags pq.StringArray
		var riskScore float64
		var processedAt time.Time

		if err := rows.Scan(&orderNumber, &fraudFlags, &riskScore, &processedAt); err != nil {
			return nil, fmt.Errorf("fraud flag scan: %w", err)
		}

		alerts = append(alerts, models.AlertRow{
			Kind:      models.AlertFraudFlag,
			Reference: orderNumber,
			Detail:    strings.Join(fraudFlags, ", "),
			Score:     riskScore,
			Timestamp: processedAt.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fraud flag rows: %w", err)
	}

	return alerts, nil
}
