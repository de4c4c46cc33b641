// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"life-story-companion/internal/domain/model"
	"life-story-companion/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase serves the aggregate view over the anonymized intervention
// log. This is the only read path the log has.
type StatsUseCase interface {
	SafetyTotals(ctx context.Context) (map[model.SafetyCategory]int, error)
}

type statsUC struct {
	interventions repository.InterventionRepository
}

func NewStatsUseCase(interventions repository.InterventionRepository) *statsUC {
	return &statsUC{interventions: interventions}
}

// SafetyTotals returns intervention counts keyed by category, with every
// category present even when its count is zero.
func (s *statsUC) SafetyTotals(ctx context.Context) (map[model.SafetyCategory]int, error) {
	counts, err := s.interventions.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[model.SafetyCategory]int, len(model.Categories()))
	for _, c := range model.Categories() {
		out[c] = counts[c]
	}
	return out, nil
}
