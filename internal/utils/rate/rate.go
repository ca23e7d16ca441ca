package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Limiter enforces the MFA abuse policy with redis counters: rolling-window
// request caps (INCR + EXPIRE) and per-method lockout keys. Redis keeps the
// counters atomic across concurrently handled requests; the service itself
// holds no locks.
type Limiter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewLimiter creates a policy limiter on the given redis client.
func NewLimiter(client *redis.Client, logger *zap.Logger) *Limiter {
	return &Limiter{client: client, logger: logger}
}

// Allow reports whether another request under key is permitted within the
// rolling window. On redis failure it fails open and returns the error so
// callers can log it: an unreachable redis must not lock every user out.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("mfa:rate:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Error("Failed to increment rate counter", zap.Error(err), zap.String("key", key))
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			l.logger.Error("Failed to set rate counter TTL", zap.Error(err), zap.String("key", key))
		}
	}

	if count > int64(limit) {
		l.logger.Warn("Rate limit exceeded",
			zap.String("key", key), zap.Int64("count", count), zap.Int("limit", limit))
		return false, nil
	}
	return true, nil
}

// AllowChallengeCreation caps challenge creation per user.
func (l *Limiter) AllowChallengeCreation(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	return l.Allow(ctx, fmt.Sprintf("challenge:%s", userID), limit, window)
}

// AllowSetup caps MFA setup initiations per user.
func (l *Limiter) AllowSetup(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	return l.Allow(ctx, fmt.Sprintf("setup:%s", userID), limit, window)
}

// LockMethod puts a user's method into lockout for the given duration.
// While the key lives, no new challenges for the method are accepted.
func (l *Limiter) LockMethod(ctx context.Context, userID, methodType string, duration time.Duration) error {
	key := fmt.Sprintf("mfa:lockout:%s:%s", userID, methodType)
	return l.client.Set(ctx, key, 1, duration).Err()
}

// MethodLockedFor returns the remaining lockout time for a user's method,
// zero when the method is not locked. Fails closed on redis errors only for
// the caller to decide; the error is surfaced.
func (l *Limiter) MethodLockedFor(ctx context.Context, userID, methodType string) (time.Duration, error) {
	key := fmt.Sprintf("mfa:lockout:%s:%s", userID, methodType)
	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		l.logger.Error("Failed to read lockout TTL", zap.Error(err),
			zap.String("user_id", userID), zap.String("method_type", methodType))
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Reset clears a rolling-window counter.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, fmt.Sprintf("mfa:rate:%s", key)).Err()
}
