// internal/pipeline/classifyorder/handler_test.go
package classifyorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order-insights/internal/common/logger"
	"order-insights/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestOrder() *models.OrderEvent {
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
		CreatedAt: time.Now().UTC(),
	}
}

func newTestHandler(t *testing.T, serverURL string, timeout time.Duration) *Handler {
	t.Helper()
	return NewHandler(&Config{
		GenAIBaseURL: serverURL,
		Model:        "test-model",
		Timeout:      timeout,
	}, logger.NewNoOpLogger())
}

func genAIServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ParsesModelResponse(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "bare JSON object",
			text: `{"riskScore": 0.82, "sentiment": "negative", "priority": "high", "summary": "Large rush order from a new customer.", "tags": ["new-customer"], "fraudFlags": ["mismatched-address"]}`,
		},
		{
			name: "JSON wrapped in markdown fence",
			text: "Here is the analysis:\n```json\n{\"riskScore\": 0.82, \"sentiment\": \"negative\", \"priority\": \"high\", \"summary\": \"Large rush order from a new customer.\", \"tags\": [\"new-customer\"], \"fraudFlags\": [\"mismatched-address\"]}\n```\nLet me know if you need more.",
		},
		{
			name: "JSON surrounded by prose",
			text: `Sure. {"riskScore": 0.82, "sentiment": "negative", "priority": "high", "summary": "Large rush order from a new customer.", "tags": ["new-customer"], "fraudFlags": ["mismatched-address"]} Hope that helps.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := genAIServer(t, tt.text)
			handler := newTestHandler(t, srv.URL, 5*time.Second)

			result := handler.Execute(context.Background(), createTestOrder())

			assert.InDelta(t, 0.82, result.RiskScore, 1e-9)
			assert.Equal(t, models.SentimentNegative, result.Sentiment)
			assert.Equal(t, models.PriorityHigh, result.Priority)
			assert.Equal(t, "Large rush order from a new customer.", result.Summary)
			assert.Equal(t, []string{"new-customer"}, result.Tags)
			assert.Equal(t, []string{"mismatched-address"}, result.FraudFlags)
		})
	}
}

func TestHandler_Execute_FallbackPaths(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request)
	}{
		{
			name: "response without any JSON object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"text": "I cannot analyze this order."})
			},
		},
		{
			name: "risk score out of range",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{
					"text": `{"riskScore": 1.5, "sentiment": "neutral", "priority": "low", "summary": "ok", "tags": [], "fraudFlags": []}`,
				})
			},
		},
		{
			name: "invalid sentiment value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{
					"text": `{"riskScore": 0.3, "sentiment": "angry", "priority": "low", "summary": "ok", "tags": [], "fraudFlags": []}`,
				})
			},
		},
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(tt.handler))
			t.Cleanup(srv.Close)
			handler := newTestHandler(t, srv.URL, 5*time.Second)

			result := handler.Execute(context.Background(), createTestOrder())

			assert.Equal(t, Fallback(), result)
			assert.Contains(t, result.Tags, FallbackTag)
		})
	}
}

func TestHandler_Execute_TimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"text": `{"riskScore": 0.1}`})
	}))
	t.Cleanup(srv.Close)

	handler := newTestHandler(t, srv.URL, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := handler.Execute(ctx, createTestOrder())
	assert.Equal(t, Fallback(), result)
}

func TestHandler_Execute_ResultAlwaysWithinBounds(t *testing.T) {
	// Even with the transport down entirely the contract holds.
	handler := newTestHandler(t, "http://127.0.0.1:0", 100*time.Millisecond)

	result := handler.Execute(context.Background(), createTestOrder())

	assert.GreaterOrEqual(t, result.RiskScore, 0.0)
	assert.LessOrEqual(t, result.RiskScore, 1.0)
	assert.Contains(t, []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}, result.Priority)
	assert.Contains(t, []string{models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative}, result.Sentiment)
	assert.NotEmpty(t, result.Summary)
	assert.NotNil(t, result.Tags)
	assert.NotNil(t, result.FraudFlags)
}

// ==========================
// Unit Tests
// ==========================

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "nested objects",
			text: `prefix {"a": {"b": 1}} suffix`,
			want: `{"a": {"b": 1}}`,
		},
		{
			name: "braces inside string values",
			text: `{"summary": "uses { and } freely", "riskScore": 0.2}`,
			want: `{"summary": "uses { and } freely", "riskScore": 0.2}`,
		},
		{
			name:    "no object at all",
			text:    "plain prose answer",
			wantErr: true,
		},
		{
			name:    "unterminated object",
			text:    `{"riskScore": 0.2`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	handler := NewHandler(&Config{GenAIBaseURL: "http://genai", Timeout: time.Second}, logger.NewNoOpLogger())

	prompt := handler.buildPrompt(createTestOrder())

	assert.Contains(t, prompt, "#1001")
	assert.Contains(t, prompt, "Jordan Reyes")
	assert.Contains(t, prompt, "$459.99")
	assert.Contains(t, prompt, "3x Widget @ $99.99")
	assert.Contains(t, prompt, `"riskScore"`)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "clean", sanitizeText("cle\x00\x1ban"))
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, sanitizeText(string(long)), maxPromptFieldLength+3)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$12.50", formatCurrency("12.50", "USD"))
	assert.Equal(t, "€9.00", formatCurrency("9.00", "EUR"))
	assert.Equal(t, "CAD 20.00", formatCurrency("20.00", "CAD"))
}
