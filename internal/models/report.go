// internal/models/report.go
package models

import "time"

// Risk bands applied to report grids.
const (
	BandHigh         = "high"
	BandMedium       = "medium"
	BandLow          = "low"
	BandHighPriority = "high_priority"
)

// Alert kinds
const (
	AlertHighRiskOrder = "high_risk_order"
	AlertFraudFlag     = "fraud_flag"
)

// ReportSnapshot is one presentation section, fully recomputed per run.
type ReportSnapshot struct {
	Name        string     `json:"name"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Header      []string   `json:"header"`
	Rows        [][]string `json:"rows"`
}

// AlertRow is the normalized union of high-risk and fraud-flag alerts.
type AlertRow struct {
	Kind      string    `json:"kind"`
	Reference string    `json:"reference"`
	Detail    string    `json:"detail"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}
