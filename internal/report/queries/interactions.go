// internal/report/queries/interactions.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Interactions summarizes pipeline activity per day and type.
func Interactions(ctx context.Context, db *sql.DB, window Window) ([]string, [][]string, error) {
	header := []string{"Day", "Type", "Count"}

	rows, err := db.QueryContext(ctx, `
		SELECT date_trunc('day', created_at) AS day, interaction_type, COUNT(*)
		FROM interactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day, interaction_type
		ORDER BY day DESC, interaction_type`,
		window.From, window.To,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("interactions query: %w", err)
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var day time.Time
		var interactionType string
		var count int64

		if err := rows.Scan(&day, &interactionType, &count); err != nil {
			return nil, nil, fmt.Errorf("interactions scan: %w", err)
		}

		grid = append(grid, []string{
			day.UTC().Format("2006-01-02"),
			interactionType,
			fmt.Sprintf("%d", count),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("interactions rows: %w", err)
	}

	return header, grid, nil
}
