// File: internal/infra/db/postgres/intervention_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"life-story-companion/internal/domain"
	"life-story-companion/internal/domain/model"
	"life-story-companion/internal/domain/ports/repository"
)

var _ repository.InterventionRepository = (*InterventionRepo)(nil)

// InterventionRepo is the append-only audit table. Rows never carry more than
// the 8-char session prefix; there is nothing to update or delete.
type InterventionRepo struct {
	pool *pgxpool.Pool
}

func NewInterventionRepo(pool *pgxpool.Pool) *InterventionRepo {
	return &InterventionRepo{pool: pool}
}

func (r *InterventionRepo) Append(ctx context.Context, iv *model.SafetyIntervention) error {
	const q = `
INSERT INTO safety_interventions (id, session_prefix, category, created_at)
VALUES ($1,$2,$3,COALESCE($4,NOW()));`
	_, err := r.pool.Exec(ctx, q, uuid.NewString(), iv.SessionPrefix, string(iv.Category), iv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("append intervention: %w", err)
	}
	return nil
}

func (r *InterventionRepo) CountByCategory(ctx context.Context) (map[model.SafetyCategory]int, error) {
	const q = `SELECT category, COUNT(*) FROM safety_interventions GROUP BY category;`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count interventions: %w", err)
	}
	defer rows.Close()

	out := make(map[model.SafetyCategory]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan intervention count: %w", err)
		}
		out[model.SafetyCategory(category)] = count
	}
	return out, rows.Err()
}
