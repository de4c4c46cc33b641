package repository

import (
	"context"

	"life-story-companion/internal/domain/model"
)

// SessionRepository persists conversation sessions. Single-record operations
// only; the core never needs a multi-record transaction.
type SessionRepository interface {
	// FindByID returns domain.ErrNotFound when no session exists.
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// Save upserts the session with an optimistic version check: a write whose
	// Version does not match the stored row fails with domain.ErrConflict.
	// On success the session's Version is advanced.
	Save(ctx context.Context, session *model.Session) error
	// Delete removes the session entirely. domain.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}
