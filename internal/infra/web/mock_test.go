package web

import (
	"context"
	"time"

	"life-story-companion/internal/domain/model"
	"life-story-companion/internal/usecase"
)

// ---- fakes for the handler tests ----

type fakeConvUC struct {
	turnResult *usecase.TurnResult
	turnErr    error
	session    *model.Session
	getErr     error
	deleteErr  error

	lastSessionID string
	lastMessage   string
}

func (f *fakeConvUC) HandleTurn(ctx context.Context, sessionID, message string) (*usecase.TurnResult, error) {
	f.lastSessionID = sessionID
	f.lastMessage = message
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	return f.turnResult, nil
}

func (f *fakeConvUC) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

func (f *fakeConvUC) DeleteSession(ctx context.Context, sessionID string) error {
	return f.deleteErr
}

type fakeStatsUC struct {
	totals map[model.SafetyCategory]int
	err    error
}

func (f *fakeStatsUC) SafetyTotals(ctx context.Context) (map[model.SafetyCategory]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.totals, nil
}

type fakeLimiter struct {
	allow bool
	err   error
	calls int
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.allow, nil
}
