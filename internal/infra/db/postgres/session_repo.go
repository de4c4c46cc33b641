// File: internal/infra/db/postgres/session_repo.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"life-story-companion/internal/domain"
	"life-story-companion/internal/domain/model"
	"life-story-companion/internal/domain/ports/repository"
	"life-story-companion/internal/infra/redis"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo persists sessions with an optimistic version check. The redis
// cache in front of it is optional and best-effort.
type SessionRepo struct {
	pool  *pgxpool.Pool
	cache *redis.SessionCache
}

func NewSessionRepo(pool *pgxpool.Pool, cache *redis.SessionCache) *SessionRepo {
	return &SessionRepo{pool: pool, cache: cache}
}

func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	// A miss comes back (nil, nil); both misses and redis outages fall
	// through to postgres.
	if r.cache != nil {
		if s, err := r.cache.Get(ctx, id); err == nil && s != nil {
			return s, nil
		}
	}

	const q = `
SELECT id, turn_count, summary, pending_user_message, pending_assistant_reply, version, created_at, updated_at
  FROM sessions WHERE id = $1;`
	var (
		s       model.Session
		summary sql.NullString
		pending sql.NullString
		reply   sql.NullString
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.TurnCount, &summary, &pending, &reply, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.Summary = summary.String
	s.PendingUserMessage = pending.String
	s.PendingAssistantReply = reply.String

	if r.cache != nil {
		_ = r.cache.Store(ctx, &s)
	}
	return &s, nil
}

// Save upserts the session guarded by its version: the row is only written
// when the stored version still matches the one the caller loaded. On success
// the session's Version is advanced to the stored value.
func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	const q = `
INSERT INTO sessions (id, turn_count, summary, pending_user_message, pending_assistant_reply, version, created_at, updated_at)
VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),NULLIF($5,''),$6,COALESCE($7,NOW()),COALESCE($8,NOW()))
ON CONFLICT (id) DO UPDATE SET
  turn_count = EXCLUDED.turn_count,
  summary = EXCLUDED.summary,
  pending_user_message = EXCLUDED.pending_user_message,
  pending_assistant_reply = EXCLUDED.pending_assistant_reply,
  version = sessions.version + 1,
  updated_at = EXCLUDED.updated_at
WHERE sessions.version = $9;`
	tag, err := r.pool.Exec(ctx, q,
		s.ID, s.TurnCount, s.Summary, s.PendingUserMessage, s.PendingAssistantReply,
		s.Version+1, s.CreatedAt, s.UpdatedAt, s.Version,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	s.Version++

	if r.cache != nil {
		_ = r.cache.Store(ctx, s)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM sessions WHERE id = $1;`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if r.cache != nil {
		_ = r.cache.Delete(ctx, id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
