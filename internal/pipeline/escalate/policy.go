// internal/pipeline/escalate/policy.go
package escalate

import "order-insights/internal/models"

// EscalationRiskThreshold is exclusive: a risk score of exactly 0.7 does not
// escalate on its own.
const EscalationRiskThreshold = 0.7

// ShouldEscalate reports whether an enriched order crosses the escalation
// policy: high priority, or risk strictly above the threshold.
func ShouldEscalate(order *models.EnrichedOrder) bool {
	return order.Priority == models.PriorityHigh || order.RiskScore > EscalationRiskThreshold
}

// Decide maps an enriched order to its escalation actions. Pure and total:
// no I/O, no logging, same input always yields the same set. A
// non-escalating order yields an empty set.
func Decide(order *models.EnrichedOrder) []models.EscalationAction {
	if !ShouldEscalate(order) {
		return nil
	}

	actionTypes := []string{
		models.ActionNotifyTeam,
		models.ActionManualReview,
		models.ActionUpdateDashboard,
	}

	actions := make([]models.EscalationAction, 0, len(actionTypes))
	for _, actionType := range actionTypes {
		actions = append(actions, models.EscalationAction{
			Type:        actionType,
			OrderNumber: order.OrderNumber,
			Priority:    order.Priority,
			RiskScore:   order.RiskScore,
		})
	}
	return actions
}
