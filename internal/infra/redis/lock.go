// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"life-story-companion/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker is a per-key mutual-exclusion scope backed by SetNX. It serializes
// turns racing on one session; the version check in the session repository
// remains the authoritative guard. Contention surfaces as
// domain.ErrSessionBusy; a redis outage surfaces as a plain error so callers
// can fall back to running without the lock.
type Locker struct {
	cli *redis.Client
}

func NewLocker(c *Client) *Locker {
	return &Locker{cli: c.cli}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	var lastErr error
	for i := 0; i < 5; i++ { // 5 tries
		ok, err := l.cli.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return token, nil
		}
		lastErr = nil
		time.Sleep(50 * time.Millisecond) // wait before retrying
	}
	if lastErr != nil {
		return "", fmt.Errorf("acquire lock: %w", lastErr)
	}
	return "", domain.ErrSessionBusy
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Result()
	return err
}
