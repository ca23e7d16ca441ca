package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
)

const sessionKeyPrefix = "mfa:session:"

// SessionCache is a write-through cache for device-bound sessions. The
// postgres row stays the source of truth; the cache only shortcuts reads.
type SessionCache struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client, now: time.Now}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

// Set stores the session with a TTL matching its remaining lifetime. Sessions
// already past expiry are not cached.
func (c *SessionCache) Set(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	// Never persist the signed token, even in the cache.
	copied := *session
	copied.Token = ""
	data, err := json.Marshal(&copied)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// Get returns the cached session or domain ErrNotFound on a miss.
func (c *SessionCache) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cached session: %w", err)
	}
	session := &models.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}
	return session, nil
}

func (c *SessionCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached session: %w", err)
	}
	return nil
}
