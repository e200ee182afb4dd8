// internal/report/alerts.go
package report

import (
	"sort"

	"order-insights/internal/models"
)

// MergeAlertRows unions the two alert kinds, orders them newest first, and
// caps the result. An order can legitimately appear twice, once per kind.
func MergeAlertRows(highRisk, fraudFlagged []models.AlertRow, limit int) []models.AlertRow {
	merged := make([]models.AlertRow, 0, len(highRisk)+len(fraudFlagged))
	merged = append(merged, highRisk...)
	merged = append(merged, fraudFlagged...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
