// internal/report/bands.go
package report

import "order-insights/internal/models"

// Risk band cut points. The high bound is exclusive on the low side: exactly
// 0.7 is medium, not high. The medium bound is inclusive: exactly 0.4 is
// medium, not low.
const (
	RiskBandHighAbove  = 0.7
	RiskBandMediumFrom = 0.4
)

// RiskBand classifies a risk score for presentation.
func RiskBand(score float64) string {
	switch {
	case score > RiskBandHighAbove:
		return models.BandHigh
	case score >= RiskBandMediumFrom:
		return models.BandMedium
	default:
		return models.BandLow
	}
}

// Band classifies an order row. High priority is its own band regardless of
// risk score; every other priority falls through to the risk bands.
func Band(riskScore float64, priority string) string {
	if priority == models.PriorityHigh {
		return models.BandHighPriority
	}
	return RiskBand(riskScore)
}

// BandColors maps each band to its grid highlight color.
var BandColors = map[string]string{
	models.BandHighPriority: "#e06666",
	models.BandHigh:         "#f4cccc",
	models.BandMedium:       "#fff2cc",
	models.BandLow:          "#d9ead3",
}
