package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/hendrawijaya/shopfront-backend/pkg/redis"
)

// SessionKV is the slice of the redis client the session substrate needs.
type SessionKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Touch(ctx context.Context, key string, ttl time.Duration) error
	CartKey(sessionID string) string
}

// RedisSessionStore adapts the shared redis client into the SessionStore
// substrate. Each session holds one JSON payload under a namespaced key with
// a rolling TTL: both reads and writes push the expiry out.
type RedisSessionStore struct {
	client SessionKV
	ttl    time.Duration
}

// NewRedisSessionStore builds the redis-backed session substrate.
func NewRedisSessionStore(client SessionKV, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

// Get returns the stored payload, or empty when the session has no cart. A
// hit refreshes the session TTL so an active cart does not expire mid-browse.
func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	key := r.client.CartKey(sessionID)
	payload, err := r.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return "", nil
		}
		return "", err
	}
	// A failed refresh only shortens the window until the next write.
	_ = r.client.Touch(ctx, key, r.ttl)
	return payload, nil
}

// Put replaces the payload and refreshes the session TTL.
func (r *RedisSessionStore) Put(ctx context.Context, sessionID string, payload string) error {
	return r.client.Set(ctx, r.client.CartKey(sessionID), payload, r.ttl)
}

// Forget drops the session's cart entirely.
func (r *RedisSessionStore) Forget(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.client.CartKey(sessionID))
}
