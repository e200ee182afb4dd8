// internal/report/queries/orders.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Orders renders one row per enriched order in the window, newest first.
func Orders(ctx context.Context, db *sql.DB, window Window) ([]string, [][]string, error) {
	header := []string{"Processed At", "Order", "Customer", "Total", "Risk", "Priority", "Sentiment", "Summary", "Fraud Flags"}

	rows, err := db.QueryContext(ctx, `
		SELECT processed_at, order_number, customer_name, total_price, currency,
		       risk_score, priority, sentiment, summary, fraud_flags
		FROM enriched_orders
		WHERE processed_at >= $1 AND processed_at < $2
		ORDER BY processed_at DESC`,
		window.From, window.To,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("orders query: %w", err)
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var processedAt time.Time
		var orderNumber, customerName, totalPrice, currency, priority, sentiment, summary string
		var riskScore float64
		var fraudFlags pq.StringArray

		if err := rows.Scan(&processedAt, &orderNumber, &customerName, &totalPrice, &currency,
			&riskScore, &priority, &sentiment, &summary, &fraudFlags); err != nil {
			return nil, nil, fmt.Errorf("orders scan: %w", err)
		}

		grid = append(grid, []string{
			processedAt.UTC().Format(time.RFC3339),
			orderNumber,
			customerName,
			totalPrice + " " + currency,
			fmt.Sprintf("%.2f", riskScore),
			priority,
			sentiment,
			summary,
			strings.Join(fraudFlags, ", "),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("orders rows: %w", err)
	}

	return header, grid, nil
}
