// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"life-story-companion/internal/domain"
	"life-story-companion/internal/domain/model"
	"life-story-companion/internal/domain/ports/adapter"
)

// memSessionRepo is a small in-memory implementation used by unit tests. It
// mimics the optimistic version check of the postgres repo.
type memSessionRepo struct {
	mu      sync.Mutex
	store   map[string]*model.Session
	saveErr error // used by tests to simulate save failures
	saves   int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{store: make(map[string]*model.Session)}
}

func (m *memSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionRepo) Save(ctx context.Context, s *model.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[s.ID]; ok && existing.Version != s.Version {
		return domain.ErrConflict
	}
	s.Version++
	cp := *s
	m.store[s.ID] = &cp
	m.saves++
	return nil
}

func (m *memSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// get returns the stored copy without the not-found error dance.
func (m *memSessionRepo) get(id string) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.store[id]; ok {
		cp := *s
		return &cp
	}
	return nil
}

type memInterventionRepo struct {
	mu        sync.Mutex
	records   []*model.SafetyIntervention
	appendErr error
}

func newMemInterventionRepo() *memInterventionRepo {
	return &memInterventionRepo{}
}

func (m *memInterventionRepo) Append(ctx context.Context, iv *model.SafetyIntervention) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *iv
	m.records = append(m.records, &cp)
	return nil
}

func (m *memInterventionRepo) CountByCategory(ctx context.Context) (map[model.SafetyCategory]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.SafetyCategory]int)
	for _, r := range m.records {
		out[r.Category]++
	}
	return out, nil
}

// fakeAI returns scripted replies in order, or errs when set. It records
// every call for assertions.
type fakeAI struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]adapter.Message
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"fake-model"}, nil
}

func (f *fakeAI) Chat(ctx context.Context, modelName string, messages []adapter.Message) (string, error) {
	reply, _, err := f.ChatWithUsage(ctx, modelName, messages)
	return reply, err
}

func (f *fakeAI) ChatWithUsage(ctx context.Context, modelName string, messages []adapter.Message) (string, adapter.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", adapter.Usage{}, f.err
	}
	if len(f.replies) == 0 {
		return "fake reply", adapter.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, adapter.Usage{}, nil
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAI) lastCall() []adapter.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

// fakeLocker grants or refuses every lock. busy simulates contention,
// failErr simulates a lock-store outage.
type fakeLocker struct {
	busy    bool
	failErr error
	locked  int
	unlocks int
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.busy {
		return "", domain.ErrSessionBusy
	}
	if f.failErr != nil {
		return "", f.failErr
	}
	f.locked++
	return "token", nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	f.unlocks++
	return nil
}
