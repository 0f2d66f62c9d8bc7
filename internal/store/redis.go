// redis.go -- go-redis client for session caching and rate limiting.
//
// Sessions are cached with a TTL matching session expiry; the fast path for
// session validation. If Redis is unavailable, handlers fall back to Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and verifies connectivity with a ping.
// All Redis-backed stores share the returned client's connection pool.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisStore wraps a Redis client for session cache operations.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a session cache over the shared Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb}
}

// CheckHealth pings Redis. Used by the health endpoint.
func (s *RedisStore) CheckHealth(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// SetSession caches a session in Redis with the given TTL (seconds).
// Also tracks the token hash in a per-user Set for bulk deletion.
func (s *RedisStore) SetSession(ctx context.Context, tokenHash string, sessionData Session, ttl int) error {
	cacheOut, err := json.Marshal(CachedSession{
		UserID:    sessionData.UserID,
		CSRFToken: sessionData.CSRFToken,
		ExpiresAt: sessionData.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	// Pipeline keeps the session key and the tracking set in step.
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf("session:%s", tokenHash), cacheOut, time.Duration(ttl)*time.Second)
	pipe.SAdd(ctx, fmt.Sprintf("user_sessions:%s", sessionData.UserID), tokenHash)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("caching session: %w", err)
	}
	return nil
}

// GetSession retrieves a cached session by its token hash.
// Returns ErrCacheMiss when the key is absent.
func (s *RedisStore) GetSession(ctx context.Context, tokenHash string) (*CachedSession, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf("session:%s", tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("fetching session: %w", err)
	}

	var cached CachedSession
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	return &cached, nil
}

// DeleteSession removes a single session from cache by its token hash.
// Also removes the token hash from the user's tracking Set.
func (s *RedisStore) DeleteSession(ctx context.Context, tokenHash string, userID uuid.UUID) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf("session:%s", tokenHash))
	pipe.SRem(ctx, fmt.Sprintf("user_sessions:%s", userID), tokenHash)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteAllUserSessions removes all cached sessions for the given user,
// using the per-user tracking Set to find them.
func (s *RedisStore) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	setKey := fmt.Sprintf("user_sessions:%s", userID)

	hashes, err := s.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("fetching user sessions: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	for _, hash := range hashes {
		pipe.Del(ctx, fmt.Sprintf("session:%s", hash))
	}
	pipe.Del(ctx, setKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting user sessions: %w", err)
	}
	return nil
}

// RedisRateLimiter implements fixed-window counting with a lockout key.
type RedisRateLimiter struct {
	rdb *redis.Client
}

// NewRedisRateLimiter returns a rate limiter over the shared Redis client.
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{rdb}
}

// Allow records an attempt under key and checks it against policy.
// Returns ErrRateLimitExceeded while locked out or once the window's attempt
// budget is spent; any other error is a Redis infrastructure failure.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, policy RateLimit) error {
	lockKey := fmt.Sprintf("ratelimit:lock:%s", key)
	countKey := fmt.Sprintf("ratelimit:count:%s", key)

	locked, err := l.rdb.Exists(ctx, lockKey).Result()
	if err != nil {
		return fmt.Errorf("checking lockout: %w", err)
	}
	if locked > 0 {
		return ErrRateLimitExceeded
	}

	// INCR + EXPIRE-on-first-attempt gives a fixed window per key.
	count, err := l.rdb.Incr(ctx, countKey).Result()
	if err != nil {
		return fmt.Errorf("recording attempt: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, countKey, policy.Window).Err(); err != nil {
			return fmt.Errorf("setting window expiry: %w", err)
		}
	}
	if count > int64(policy.MaxAttempts) {
		if err := l.rdb.Set(ctx, lockKey, 1, policy.LockoutTTL).Err(); err != nil {
			return fmt.Errorf("setting lockout: %w", err)
		}
		return ErrRateLimitExceeded
	}
	return nil
}
