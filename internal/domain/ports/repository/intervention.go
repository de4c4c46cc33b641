package repository

import (
	"context"

	"life-story-companion/internal/domain/model"
)

// InterventionRepository is the append-only safety audit log. Records carry a
// session prefix only; there is no per-session read path and no update or
// delete, just aggregate counting.
type InterventionRepository interface {
	Append(ctx context.Context, intervention *model.SafetyIntervention) error
	CountByCategory(ctx context.Context) (map[model.SafetyCategory]int, error)
}
