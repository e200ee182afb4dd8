// internal/pipeline/enrichstore/models.go
package enrichstore

import "time"

// Output describes the stored row. The store is append-only; duplicate
// deliveries of the same order each produce their own row.
type Output struct {
	RecordID    string    `json:"recordId"`
	OrderID     string    `json:"orderId"`
	ProcessedAt time.Time `json:"processedAt"`
}
