// internal/pipeline/classifyorder/models.go
package classifyorder

import "order-insights/internal/models"

// Fallback result values. A classification failure degrades to these; it
// never drops the order.
const (
	FallbackRiskScore = 0.5
	FallbackSummary   = "Unable to analyze order"
	FallbackTag       = "analysis-failed"
)

// Fallback returns the fixed, always-valid substitute classification.
func Fallback() *models.ClassificationResult {
	return &models.ClassificationResult{
		RiskScore:  FallbackRiskScore,
		Sentiment:  models.SentimentNeutral,
		Priority:   models.PriorityMedium,
		Summary:    FallbackSummary,
		Tags:       []string{FallbackTag},
		FraudFlags: []string{},
	}
}
