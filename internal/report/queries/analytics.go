// internal/report/queries/analytics.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
)

// Analytics renders per-priority aggregates over the window: volume, average
// risk, and how many orders carried at least one fraud flag.
func Analytics(ctx context.Context, db *sql.DB, window Window) ([]string, [][]string, error) {
	header := []string{"Priority", "Orders", "Avg Risk", "Max Risk", "Fraud Flagged"}

	rows, err := db.QueryContext(ctx, `
		SELECT priority, COUNT(*), AVG(risk_score), MAX(risk_score),
		       COUNT(*) FILTER (WHERE array_length(fraud_flags, 1) > 0)
		FROM enriched_orders
		WHERE processed_at >= $1 AND processed_at < $2
		GROUP BY priority
		ORDER BY priority`,
		window.From, window.To,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("analytics query: %w", err)
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var priority string
		var count, fraudCount int64
		var avgRisk, maxRisk float64

		if err := rows.Scan(&priority, &count, &avgRisk, &maxRisk, &fraudCount); err != nil {
			return nil, nil, fmt.Errorf("analytics scan: %w", err)
		}

		grid = append(grid, []string{
			priority,
			fmt.Sprintf("%d", count),
			fmt.Sprintf("%.3f", avgRisk),
			fmt.Sprintf("%.2f", maxRisk),
			fmt.Sprintf("%d", fraudCount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("analytics rows: %w", err)
	}

	return header, grid, nil
}
