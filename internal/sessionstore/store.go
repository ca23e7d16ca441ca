// Package sessionstore holds the client-facing session accessors: the most
// recent bound session per user, behind a capability interface so callers
// declare what they need instead of probing the environment at runtime.
package sessionstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
)

// Store is the local session persistence capability. Implementations keep at
// most one session per user; storing a new one replaces the old.
//
// IsValid is a LOCAL check (presence, expiry, revocation as stored). It does
// not consult the authoritative session table; callers that need the strong
// guarantee use repository.SessionRepository.FindByID.
type Store interface {
	StoreSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, userID uuid.UUID) (*models.Session, error)
	ClearSession(ctx context.Context, userID uuid.UUID) error
	IsValid(ctx context.Context, userID uuid.UUID) bool
}
