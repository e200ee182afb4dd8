// internal/models/order.go
package models

import "time"

// Sentiment values produced by the classifier.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Priority levels
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// LineItem is one ordered item as delivered by the storefront webhook.
type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// OrderEvent is the raw inbound order. It is owned by the caller and may be
// redelivered; the pipeline never mutates it.
type OrderEvent struct {
	ID           string     `json:"id"`
	OrderNumber  string     `json:"orderNumber"`
	Email        string     `json:"email"`
	CustomerName string     `json:"customerName"`
	TotalPrice   string     `json:"totalPrice"`
	Currency     string     `json:"currency"`
	LineItems    []LineItem `json:"lineItems"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ClassificationResult holds the AI-derived signals for one order. Every field
// is always populated: a failed classification yields the fallback result.
type ClassificationResult struct {
	RiskScore  float64  `json:"riskScore"`
	Sentiment  string   `json:"sentiment"`
	Priority   string   `json:"priority"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	FraudFlags []string `json:"fraudFlags"`
}

// EnrichedOrder is the persisted, append-only record: order fields plus
// classification fields plus the write-time processing timestamp.
type EnrichedOrder struct {
	OrderEvent
	ClassificationResult
	ProcessedAt time.Time `json:"processedAt"`
}

// Escalation action types
const (
	ActionNotifyTeam      = "notify_team"
	ActionManualReview    = "manual_review"
	ActionUpdateDashboard = "update_dashboard"
)

// EscalationAction is one downstream follow-up for a high-risk or
// high-priority order. Computed, dispatched once, never persisted.
type EscalationAction struct {
	Type        string  `json:"type"`
	OrderNumber string  `json:"orderNumber"`
	Priority    string  `json:"priority"`
	RiskScore   float64 `json:"riskScore"`
}

// IngestResponse is the caller-visible result of one ingestion.
type IngestResponse struct {
	Success     bool             `json:"success"`
	OrderID     string           `json:"orderId,omitempty"`
	OrderNumber string           `json:"orderNumber,omitempty"`
	Analysis    *AnalysisSummary `json:"analysis,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// AnalysisSummary is the classification subset echoed back to the caller.
type AnalysisSummary struct {
	RiskScore float64 `json:"riskScore"`
	Priority  string  `json:"priority"`
	Summary   string  `json:"summary"`
}
