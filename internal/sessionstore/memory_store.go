package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
)

// MemoryStore keeps sessions in process memory. Suitable for tests and for
// single-instance deployments without redis.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*models.Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) StoreSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.UserID] = &copied
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, userID uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *MemoryStore) ClearSession(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *MemoryStore) IsValid(ctx context.Context, userID uuid.UUID) bool {
	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return false
	}
	return session.ActiveAt(s.now())
}

var _ Store = (*MemoryStore)(nil)
