// internal/pipeline/ingest/gateway.go
package ingest

import (
	"context"
	"fmt"
	"time"

	"order-insights/internal/common/logger"
	"order-insights/internal/common/metrics"
	"order-insights/internal/models"
	"order-insights/internal/pipeline/enrichstore"
	"order-insights/internal/pipeline/escalate"

	"github.com/redis/go-redis/v9"
)

// Classifier produces a classification for every order; it never fails.
type Classifier interface {
	Execute(ctx context.Context, event *models.OrderEvent) *models.ClassificationResult
}

// StoreWriter persists the enriched record and the interaction audit row.
type StoreWriter interface {
	Execute(ctx context.Context, event *models.OrderEvent, classification *models.ClassificationResult) (*enrichstore.Output, error)
	LogInteraction(ctx context.Context, interactionType, orderID string, details map[string]interface{})
}

// EscalationDispatcher sends escalation actions to their sinks.
type EscalationDispatcher interface {
	Dispatch(ctx context.Context, order *models.EnrichedOrder, actions []models.EscalationAction) error
}

// Gateway drives one order through classify → store → escalate. Requests are
// independent; the gateway holds no cross-request state beyond the redis
// delivery markers.
type Gateway struct {
	config     *Config
	classifier Classifier
	store      StoreWriter
	dispatcher EscalationDispatcher
	redis      *redis.Client
	logger     logger.Logger
}

func NewGateway(config *Config, classifier Classifier, store StoreWriter, dispatcher EscalationDispatcher, redisClient *redis.Client, log logger.Logger) *Gateway {
	return &Gateway{
		config:     config,
		classifier: classifier,
		store:      store,
		dispatcher: dispatcher,
		redis:      redisClient,
		logger:     log.WithFields(map[string]interface{}{"component": "ingest-gateway"}),
	}
}

// Process runs the full pipeline for one order. Classification cannot fail
// (fallback absorbs adapter errors); a store failure aborts the request;
// escalation dispatch is fire-and-forget and never affects the response.
func (g *Gateway) Process(ctx context.Context, event *models.OrderEvent) (*models.IngestResponse, error) {
	start := time.Now()

	duplicate := g.markDelivery(ctx, event.ID)
	if duplicate {
		g.logger.Warn("order redelivered", map[string]interface{}{
			"orderId":     event.ID,
			"orderNumber": event.OrderNumber,
			"duplicate":   true,
		})
	}

	classification := g.classifier.Execute(ctx, event)

	stored, err := g.store.Execute(ctx, event, classification)
	if err != nil {
		metrics.OrdersProcessed.WithLabelValues("error").Inc()
		g.logger.Error("order persist failed", map[string]interface{}{
			"orderId":     event.ID,
			"orderNumber": event.OrderNumber,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("persist order %s: %w", event.ID, err)
	}

	g.store.LogInteraction(ctx, "order_processed", event.ID, map[string]interface{}{
		"orderNumber": event.OrderNumber,
		"riskScore":   classification.RiskScore,
		"priority":    classification.Priority,
		"duplicate":   duplicate,
	})

	enriched := &models.EnrichedOrder{
		OrderEvent:           *event,
		ClassificationResult: *classification,
		ProcessedAt:          stored.ProcessedAt,
	}

	if actions := escalate.Decide(enriched); len(actions) > 0 {
		go g.dispatch(enriched, actions)
	}

	metrics.OrdersProcessed.WithLabelValues("success").Inc()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	g.logger.Info("order processed", map[string]interface{}{
		"orderId":     event.ID,
		"orderNumber": event.OrderNumber,
		"recordId":    stored.RecordID,
		"riskScore":   classification.RiskScore,
		"priority":    classification.Priority,
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &models.IngestResponse{
		Success:     true,
		OrderID:     event.ID,
		OrderNumber: event.OrderNumber,
		Analysis: &models.AnalysisSummary{
			RiskScore: classification.RiskScore,
			Priority:  classification.Priority,
			Summary:   classification.Summary,
		},
	}, nil
}

// dispatch runs off the request goroutine with its own deadline; a failure is
// logged by the dispatcher and otherwise dropped.
func (g *Gateway) dispatch(order *models.EnrichedOrder, actions []models.EscalationAction) {
	ctx, cancel := context.WithTimeout(context.Background(), g.config.EscalationTimeout)
	defer cancel()

	if err := g.dispatcher.Dispatch(ctx, order, actions); err != nil {
		g.logger.Warn("escalation dispatch incomplete", map[string]interface{}{
			"orderNumber": order.OrderNumber,
			"actions":     len(actions),
			"error":       err.Error(),
		})
	}
}

// markDelivery records the order id and reports whether it was seen before.
// The marker is advisory: duplicates are processed normally (the store is
// append-only and the caller delivers at-least-once), and a marker failure is
// treated as first delivery.
func (g *Gateway) markDelivery(ctx context.Context, orderID string) bool {
	if g.redis == nil || orderID == "" {
		return false
	}

	key := "order:seen:" + orderID
	set, err := g.redis.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.config.DuplicateMarkerTTL).Result()
	if err != nil {
		g.logger.Warn("delivery marker failed", map[string]interface{}{
			"orderId": orderID,
			"error":   err.Error(),
		})
		return false
	}
	return !set
}
