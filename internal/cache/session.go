package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tickbox/tickbox/internal/auth"
	"github.com/tickbox/tickbox/internal/model"
)

const (
	sessionCachePrefix = "session:"
	revokedPrefix      = "revoked:"
)

// sessionKey never stores the raw token in Redis.
func sessionKey(token string) string {
	return sessionCachePrefix + auth.QuickHash(token)
}

// revokedKey marks a token as logged out.
func revokedKey(token string) string {
	return revokedPrefix + auth.QuickHash(token)
}

// setSessionScript writes the session entry unless the token was revoked.
// A resolve that raced a logout must not bring the entry back.
var setSessionScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[2]) == 1 then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	return 1
`)

// revokeSessionScript drops the session entry and leaves a tombstone.
var revokeSessionScript = redis.NewScript(`
	redis.call('SET', KEYS[2], '1', 'PX', ARGV[1])
	redis.call('DEL', KEYS[1])
	return 1
`)

// GetSession returns the user cached for token, or nil on a miss.
// A revoked token always reads as a miss.
func (c *Cache) GetSession(ctx context.Context, token string) (*model.User, error) {
	vals, err := c.client.MGet(ctx, sessionKey(token), revokedKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] != nil {
		return nil, nil
	}

	data, ok := vals[0].(string)
	if !ok {
		return nil, nil
	}

	var cached model.CachedSession
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		// corrupted entry, treat as miss
		return nil, nil //nolint:nilerr
	}
	return cached.User(), nil
}

// SetSession caches the user resolved from token. It is a no-op once the
// token has been revoked.
func (c *Cache) SetSession(ctx context.Context, token string, user *model.User) error {
	data, err := json.Marshal(user.ToCachedSession())
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	keys := []string{sessionKey(token), revokedKey(token)}
	err = setSessionScript.Run(ctx, c.client, keys, data, c.sessionTTL.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// RevokeSession evicts token and blocks it from being cached again for
// the tombstone lifetime.
func (c *Cache) RevokeSession(ctx context.Context, token string) error {
	keys := []string{sessionKey(token), revokedKey(token)}
	if err := revokeSessionScript.Run(ctx, c.client, keys, c.revokedTTL().Milliseconds()).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// revokedTTL outlives any entry a racing resolve could still write.
func (c *Cache) revokedTTL() time.Duration {
	return 2 * c.sessionTTL
}
