// internal/pipeline/enrichstore/handler.go
package enrichstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-insights/internal/common/logger"
	"order-insights/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "store-enriched-order"
)

var (
	ErrWarehouseInsertFailed = errors.New("WAREHOUSE_INSERT_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute appends one enriched order row. A storage failure is surfaced to
// the caller; the pipeline treats it as fatal for the event.
func (h *Handler) Execute(ctx context.Context, event *models.OrderEvent, classification *models.ClassificationResult) (*Output, error) {
	recordID := uuid.New().String()
	processedAt := time.Now().UTC()

	lineItemsJSON, err := json.Marshal(event.LineItems)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal line items: %v", ErrWarehouseInsertFailed, err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO enriched_orders (
			id, order_id, order_number, customer_name, email,
			total_price, currency, line_items, order_created_at,
			risk_score, sentiment, priority, summary, tags, fraud_flags,
			processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		recordID,
		event.ID,
		event.OrderNumber,
		event.CustomerName,
		event.Email,
		event.TotalPrice,
		event.Currency,
		lineItemsJSON,
		event.CreatedAt,
		classification.RiskScore,
		classification.Sentiment,
		classification.Priority,
		classification.Summary,
		pq.StringArray(classification.Tags),
		pq.StringArray(classification.FraudFlags),
		processedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrWarehouseInsertFailed, err)
	}

	h.logger.Info("enriched order stored", map[string]interface{}{
		"recordId":    recordID,
		"orderId":     event.ID,
		"orderNumber": event.OrderNumber,
		"riskScore":   classification.RiskScore,
		"priority":    classification.Priority,
	})

	return &Output{
		RecordID:    recordID,
		OrderID:     event.ID,
		ProcessedAt: processedAt,
	}, nil
}

// LogInteraction records a processing event in the interactions table.
// Non-critical: a failure is logged and swallowed so it never affects the
// order's outcome.
func (h *Handler) LogInteraction(ctx context.Context, interactionType, orderID string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		h.logger.Warn("failed to marshal interaction details", map[string]interface{}{
			"error": err,
		})
		detailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO interactions (interaction_type, order_id, details, created_at)
		VALUES ($1, $2, $3, $4)`,
		interactionType,
		orderID,
		detailsJSON,
		time.Now().UTC(),
	)
	if err != nil {
		h.logger.Warn("interaction insert failed", map[string]interface{}{
			"error":           err,
			"interactionType": interactionType,
			"orderId":         orderID,
		})
	}
}
