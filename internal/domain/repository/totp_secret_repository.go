package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
)

// TOTPSecretRepository persists encrypted TOTP shared secrets.
type TOTPSecretRepository interface {
	Create(ctx context.Context, secret *models.TOTPSecret) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.TOTPSecret, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error

	// DeleteUnverifiedByUserID clears a stale setup so a new initiate call can
	// create a fresh secret. Verified secrets are never deleted this way.
	DeleteUnverifiedByUserID(ctx context.Context, userID uuid.UUID) (bool, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}
