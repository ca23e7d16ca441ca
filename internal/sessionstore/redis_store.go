package sessionstore

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

const userSessionKeyPrefix = "mfa:user_session:"

// RedisStore keeps the per-user session in redis so every instance of the
// service sees the same local session state.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func userSessionKey(userID uuid.UUID) string {
	return userSessionKeyPrefix + userID.String()
}

func (s *RedisStore) StoreSession(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, userSessionKey(session.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisStore) GetSession(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	data, err := s.client.Get(ctx, userSessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	session := &models.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

func (s *RedisStore) ClearSession(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, userSessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) IsValid(ctx context.Context, userID uuid.UUID) bool {
	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return false
	}
	return session.ActiveAt(s.now())
}

var _ Store = (*RedisStore)(nil)
