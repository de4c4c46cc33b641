package model

import "time"

// SafetyCategory is the closed set of unsafe-content categories. New values
// must also be handled in the exhaustive switches in internal/safety and
// internal/prompts; there is deliberately no default fallback there.
type SafetyCategory string

const (
	CategoryMedical       SafetyCategory = "medical"
	CategoryLegal         SafetyCategory = "legal"
	CategoryCrisis        SafetyCategory = "crisis"
	CategoryInappropriate SafetyCategory = "inappropriate"
)

// Categories in classifier priority order. The order is load-bearing: a
// message matching several groups is routed to the first one listed here.
func Categories() []SafetyCategory {
	return []SafetyCategory{CategoryMedical, CategoryLegal, CategoryCrisis, CategoryInappropriate}
}

// SafetyIntervention is an append-only audit record of one blocked message.
// It keeps an 8-character session prefix only, so aggregate counts are
// possible without linking back to session content.
type SafetyIntervention struct {
	SessionPrefix string
	Category      SafetyCategory
	CreatedAt     time.Time
}

const sessionPrefixLen = 8

// SessionPrefix truncates a session id for intervention logging.
func SessionPrefix(sessionID string) string {
	if len(sessionID) <= sessionPrefixLen {
		return sessionID
	}
	return sessionID[:sessionPrefixLen]
}

func NewSafetyIntervention(sessionID string, category SafetyCategory) *SafetyIntervention {
	return &SafetyIntervention{
		SessionPrefix: SessionPrefix(sessionID),
		Category:      category,
		CreatedAt:     time.Now(),
	}
}
