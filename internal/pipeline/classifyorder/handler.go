// internal/pipeline/classifyorder/handler.go
package classifyorder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"order-insights/internal/common/logger"
	"order-insights/internal/common/metrics"
	"order-insights/internal/models"
)

const (
	TaskType = "classify-order"

	maxPromptFieldLength = 1000
)

var (
	ErrClassificationFailed  = errors.New("CLASSIFICATION_FAILED")
	ErrClassificationTimeout = errors.New("CLASSIFICATION_TIMEOUT")
)

// fencedJSONPattern matches a JSON object inside a markdown code block; the
// model regularly wraps its answer in one despite the instruction not to.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

type Handler struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute classifies one order. The contract is total: every failure mode of
// the model call or response parsing degrades to the fixed fallback result,
// so the caller always receives a fully populated classification.
func (h *Handler) Execute(ctx context.Context, event *models.OrderEvent) *models.ClassificationResult {
	result, err := h.classify(ctx, event)
	if err != nil {
		metrics.ClassificationFallbacks.Inc()
		h.logger.Warn("classification degraded to fallback", map[string]interface{}{
			"orderId":     event.ID,
			"orderNumber": event.OrderNumber,
			"error":       err.Error(),
		})
		return Fallback()
	}
	return result
}

// classify performs exactly one model call. Retries, if desired, are layered
// by a caller, not here.
func (h *Handler) classify(ctx context.Context, event *models.OrderEvent) (*models.ClassificationResult, error) {
	requestBody := map[string]interface{}{
		"model":  h.config.Model,
		"prompt": h.buildPrompt(event),
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", h.config.GenAIBaseURL+"/api/ai/generate", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
	}

	resp, err := h.client.Do(req)
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrClassificationTimeout
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrClassificationFailed, resp.StatusCode)
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrClassificationFailed, err)
	}

	raw, err := extractJSON(apiResponse.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}

	result, err := parseResult(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}

	h.logger.Info("order classified", map[string]interface{}{
		"orderId":    event.ID,
		"riskScore":  result.RiskScore,
		"priority":   result.Priority,
		"sentiment":  result.Sentiment,
		"fraudFlags": len(result.FraudFlags),
	})

	return result, nil
}

// buildPrompt renders the order as a natural-language description followed by
// a strict JSON-only instruction.
func (h *Handler) buildPrompt(event *models.OrderEvent) string {
	var b strings.Builder

	b.WriteString("Analyze the following e-commerce order and assess its risk.\n\n")
	fmt.Fprintf(&b, "Order %s\n", sanitizeText(event.OrderNumber))
	fmt.Fprintf(&b, "Customer: %s <%s>\n", sanitizeText(event.CustomerName), sanitizeText(event.Email))
	fmt.Fprintf(&b, "Total: %s\n", formatCurrency(event.TotalPrice, event.Currency))
	b.WriteString("Items:\n")
	for _, item := range event.LineItems {
		fmt.Fprintf(&b, "- %dx %s @ %s\n", item.Quantity, sanitizeText(item.Title), formatCurrency(item.Price, event.Currency))
	}

	b.WriteString("\nRespond with only a JSON object, no prose, matching:\n")
	b.WriteString(`{"riskScore": <number 0-1>, "sentiment": "positive|neutral|negative", ` +
		`"priority": "low|medium|high", "summary": "<one sentence>", ` +
		`"tags": ["..."], "fraudFlags": ["..."]}`)

	return b.String()
}

// extractJSON pulls the first JSON object out of free text: a fenced code
// block wins, otherwise the first balanced {...} substring.
func extractJSON(text string) (string, error) {
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in response")
}

// parseResult decodes and shape-checks the model output.
func parseResult(raw string) (*models.ClassificationResult, error) {
	var result models.ClassificationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %v", err)
	}

	if result.RiskScore < 0 || result.RiskScore > 1 {
		return nil, fmt.Errorf("risk score %v out of range", result.RiskScore)
	}

	switch result.Sentiment {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
	default:
		return nil, fmt.Errorf("invalid sentiment %q", result.Sentiment)
	}

	switch result.Priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		return nil, fmt.Errorf("invalid priority %q", result.Priority)
	}

	if strings.TrimSpace(result.Summary) == "" {
		return nil, fmt.Errorf("empty summary")
	}

	if result.Tags == nil {
		result.Tags = []string{}
	}
	if result.FraudFlags == nil {
		result.FraudFlags = []string{}
	}

	return &result, nil
}

// sanitizeText strips control characters and truncates over-long values
// before they are embedded in the prompt.
func sanitizeText(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= 32 || r == '\n' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxPromptFieldLength {
		out = out[:maxPromptFieldLength] + "..."
	}
	return strings.TrimSpace(out)
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

func formatCurrency(amount, currency string) string {
	if symbol, ok := currencySymbols[currency]; ok {
		return symbol + amount
	}
	return currency + " " + amount
}
