// internal/pipeline/escalate/handler_test.go
package escalate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"order-insights/internal/common/logger"
	"order-insights/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createEnrichedOrder(riskScore float64, priority string) *models.EnrichedOrder {
	return &models.EnrichedOrder{
		OrderEvent: models.OrderEvent{
			ID:          "order-001",
			OrderNumber: "#1001",
		},
		ClassificationResult: models.ClassificationResult{
			RiskScore: riskScore,
			Sentiment: models.SentimentNeutral,
			Priority:  priority,
			Summary:   "Routine order.",
		},
	}
}

type mockSNS struct {
	published []sns.PublishInput
	err       error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.published = append(m.published, *params)
	return &sns.PublishOutput{}, nil
}

type mockDashboard struct {
	indexed [][]byte
	index   string
	err     error
}

func (m *mockDashboard) Index(ctx context.Context, index string, document []byte) error {
	if m.err != nil {
		return m.err
	}
	m.index = index
	m.indexed = append(m.indexed, document)
	return nil
}

func newTestDispatcher(snsClient SNSService, dashboard DashboardIndexer) *Dispatcher {
	return NewDispatcher(&Config{
		SNSTopicARN:    "arn:aws:sns:us-east-1:000000000000:order-escalations",
		DashboardIndex: "order-escalations",
	}, snsClient, dashboard, logger.NewNoOpLogger())
}

// ==========================
// Policy Tests
// ==========================

func TestDecide_Policy(t *testing.T) {
	tests := []struct {
		name      string
		riskScore float64
		priority  string
		escalates bool
	}{
		{"high priority low risk", 0.1, models.PriorityHigh, true},
		{"risk above threshold", 0.71, models.PriorityLow, true},
		{"risk exactly at threshold", 0.7, models.PriorityMedium, false},
		{"both triggers", 0.95, models.PriorityHigh, true},
		{"neither trigger", 0.3, models.PriorityLow, false},
		{"medium priority below threshold", 0.69, models.PriorityMedium, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := createEnrichedOrder(tt.riskScore, tt.priority)
			actions := Decide(order)

			if !tt.escalates {
				assert.Empty(t, actions)
				return
			}

			assert.Len(t, actions, 3)
			types := make([]string, 0, len(actions))
			for _, action := range actions {
				types = append(types, action.Type)
				assert.Equal(t, "#1001", action.OrderNumber)
				assert.Equal(t, tt.priority, action.Priority)
				assert.Equal(t, tt.riskScore, action.RiskScore)
			}
			assert.ElementsMatch(t, []string{
				models.ActionNotifyTeam,
				models.ActionManualReview,
				models.ActionUpdateDashboard,
			}, types)
		})
	}
}

func TestDecide_IsDeterministic(t *testing.T) {
	order := createEnrichedOrder(0.9, models.PriorityHigh)
	assert.Equal(t, Decide(order), Decide(order))
}

// ==========================
// Dispatcher Tests
// ==========================

func TestDispatcher_Dispatch_AllActions(t *testing.T) {
	snsClient := &mockSNS{}
	dashboard := &mockDashboard{}
	dispatcher := newTestDispatcher(snsClient, dashboard)

	order := createEnrichedOrder(0.9, models.PriorityHigh)
	err := dispatcher.Dispatch(context.Background(), order, Decide(order))

	assert.NoError(t, err)
	assert.Len(t, snsClient.published, 2)
	assert.Len(t, dashboard.indexed, 1)
	assert.Equal(t, "order-escalations", dashboard.index)

	var doc map[string]interface{}
	assert.NoError(t, json.Unmarshal(dashboard.indexed[0], &doc))
	assert.Equal(t, "#1001", doc["orderNumber"])
	assert.Equal(t, 0.9, doc["riskScore"])

	for _, input := range snsClient.published {
		assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:order-escalations", *input.TopicArn)
		assert.Contains(t, *input.Subject, "#1001")
	}
}

func TestDispatcher_Dispatch_SNSFailureStillUpdatesDashboard(t *testing.T) {
	snsClient := &mockSNS{err: errors.New("topic unavailable")}
	dashboard := &mockDashboard{}
	dispatcher := newTestDispatcher(snsClient, dashboard)

	order := createEnrichedOrder(0.9, models.PriorityHigh)
	err := dispatcher.Dispatch(context.Background(), order, Decide(order))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrEscalationDispatchFailed))
	assert.Len(t, dashboard.indexed, 1)
}

func TestDispatcher_Dispatch_DashboardFailure(t *testing.T) {
	snsClient := &mockSNS{}
	dashboard := &mockDashboard{err: errors.New("index closed")}
	dispatcher := newTestDispatcher(snsClient, dashboard)

	order := createEnrichedOrder(0.9, models.PriorityHigh)
	err := dispatcher.Dispatch(context.Background(), order, Decide(order))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDashboardUpdateFailed))
	assert.Len(t, snsClient.published, 2)
}

func TestDispatcher_Dispatch_EmptyActionSet(t *testing.T) {
	snsClient := &mockSNS{}
	dashboard := &mockDashboard{}
	dispatcher := newTestDispatcher(snsClient, dashboard)

	order := createEnrichedOrder(0.2, models.PriorityLow)
	err := dispatcher.Dispatch(context.Background(), order, Decide(order))

	assert.NoError(t, err)
	assert.Empty(t, snsClient.published)
	assert.Empty(t, dashboard.indexed)
}
