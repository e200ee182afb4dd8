// internal/pipeline/enrichstore/handler_test.go
package enrichstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-insights/internal/common/logger"
	"order-insights/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestEvent() *models.OrderEvent {
	return &models.OrderEvent{
		ID:           "order-001",
		OrderNumber:  "#1001",
		Email:        "buyer@example.com",
		CustomerName: "Jordan Reyes",
		TotalPrice:   "459.99",
		Currency:     "USD",
		LineItems: []models.LineItem{
			{Title: "Widget", Quantity: 3, Price: "99.99"},
			{Title: "Gadget", Quantity: 1, Price: "159.99"},
		},
		CreatedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
}

func createTestClassification() *models.ClassificationResult {
	return &models.ClassificationResult{
		RiskScore:  0.82,
		Sentiment:  models.SentimentNegative,
		Priority:   models.PriorityHigh,
		Summary:    "Large rush order from a new customer.",
		Tags:       []string{"new-customer"},
		FraudFlags: []string{"mismatched-address"},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO enriched_orders`).
		WithArgs(
			sqlmock.AnyArg(), // record ID (UUID)
			"order-001",
			"#1001",
			"Jordan Reyes",
			"buyer@example.com",
			"459.99",
			"USD",
			sqlmock.AnyArg(), // line items JSON
			sqlmock.AnyArg(), // order created_at
			0.82,
			"negative",
			"high",
			"Large rush order from a new customer.",
			pq.StringArray{"new-customer"},
			pq.StringArray{"mismatched-address"},
			sqlmock.AnyArg(), // processed_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(LoadConfig(), db, logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), createTestEvent(), createTestClassification())

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.NotEmpty(t, output.RecordID)
	assert.Equal(t, "order-001", output.OrderID)
	assert.WithinDuration(t, time.Now().UTC(), output.ProcessedAt, 5*time.Second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO enriched_orders`).
		WillReturnError(errors.New("connection reset"))

	handler := NewHandler(LoadConfig(), db, logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), createTestEvent(), createTestClassification())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrWarehouseInsertFailed))
	assert.Nil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DuplicateDeliveriesBothStored(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// The table has no uniqueness on order_id; both inserts land.
	mock.ExpectExec(`INSERT INTO enriched_orders`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO enriched_orders`).
		WillReturnResult(sqlmock.NewResult(2, 1))

	handler := NewHandler(LoadConfig(), db, logger.NewNoOpLogger())

	event := createTestEvent()
	classification := createTestClassification()

	first, err := handler.Execute(context.Background(), event, classification)
	assert.NoError(t, err)
	second, err := handler.Execute(context.Background(), event, classification)
	assert.NoError(t, err)

	assert.NotEqual(t, first.RecordID, second.RecordID)
	assert.Equal(t, first.OrderID, second.OrderID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Edge Cases
// ==========================

func TestHandler_Execute_EmptyLineItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO enriched_orders`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(LoadConfig(), db, logger.NewNoOpLogger())

	event := createTestEvent()
	event.LineItems = nil

	output, err := handler.Execute(context.Background(), event, createTestClassification())

	assert.NoError(t, err)
	assert.NotNil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ContextTimeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO enriched_orders`).
		WillReturnError(context.DeadlineExceeded)

	handler := NewHandler(LoadConfig(), db, logger.NewNoOpLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
	defer cancel()

	output, err := handler.Execute(ctx, createTestEvent(), createTestClassification())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrWarehouseInsertFailed))
	assert.Nil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Interaction Log Tests
// ==========================

func TestHandler_LogInteraction_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO interactions`).
		WithArgs(
			"order_processed",
			"order-001",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(LoadConfig(), db, logger.NewNoOpLogger())

	handler.LogInteraction(context.Background(), "order_processed", "order-001", map[string]interface{}{
		"riskScore": 0.82,
		"priority":  "high",
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_LogInteraction_FailureIsSwallowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO interactions`).
		WillReturnError(errors.New("interactions table missing"))

	handler := NewHandler(LoadConfig(), db, logger.NewNoOpLogger())

	// Must not panic or surface the error.
	handler.LogInteraction(context.Background(), "order_processed", "order-001", nil)

	assert.NoError(t, mock.ExpectationsWereMet())
}
