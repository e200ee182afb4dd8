// internal/pipeline/ingest/models.go
package ingest

import (
	"time"

	"order-insights/internal/models"
)

// OrderEventSchema validates the inbound webhook body before decoding.
// Line items and customer fields are optional; the classifier and store both
// tolerate their absence.
const OrderEventSchema = `{
	"type": "object",
	"required": ["id", "orderNumber", "totalPrice", "currency"],
	"properties": {
		"id":           {"type": "string", "minLength": 1},
		"orderNumber":  {"type": "string", "minLength": 1},
		"email":        {"type": "string"},
		"customerName": {"type": "string"},
		"totalPrice":   {"type": "string", "minLength": 1},
		"currency":     {"type": "string", "minLength": 3, "maxLength": 3},
		"createdAt":    {"type": "string"},
		"lineItems": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title", "quantity", "price"],
				"properties": {
					"title":    {"type": "string"},
					"quantity": {"type": "integer", "minimum": 0},
					"price":    {"type": "string"}
				}
			}
		}
	}
}`

// SyntheticOrder returns the fixed diagnostic order used by the test webhook.
// It exercises the full pipeline without requiring a storefront delivery.
func SyntheticOrder() *models.OrderEvent {
	return &models.OrderEvent{
		ID:           "test-" + time.Now().UTC().Format("20060102150405"),
		OrderNumber:  "#TEST-1001",
		Email:        "test.customer@example.com",
		CustomerName: "Test Customer",
		TotalPrice:   "459.99",
		Currency:     "USD",
		LineItems: []models.LineItem{
			{Title: "Sample Widget", Quantity: 3, Price: "99.99"},
			{Title: "Sample Gadget", Quantity: 1, Price: "159.99"},
		},
		CreatedAt: time.Now().UTC(),
	}
}
