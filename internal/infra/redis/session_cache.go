package redis

import (
	"context"
	"encoding/json"
	"time"

	"life-story-companion/internal/domain/model"
)

// SessionCache keeps the latest persisted session state in redis so a turn
// does not always need a postgres round-trip. A cache miss is not an error;
// Get reports it as a nil session.
type SessionCache struct {
	client *Client
	ttl    time.Duration
}

func NewSessionCache(client *Client, ttl time.Duration) *SessionCache {
	return &SessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *SessionCache) Store(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(session.ID), data, c.ttl)
}

// Get returns the cached session, or (nil, nil) on a cache miss. A non-nil
// error means redis itself failed.
func (c *SessionCache) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *SessionCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, sessionKey(sessionID))
}

func sessionKey(id string) string { return "session:" + id }
