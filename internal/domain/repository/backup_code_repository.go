package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
)

// BackupCodeRepository persists single-use recovery codes.
type BackupCodeRepository interface {
	CreateMultiple(ctx context.Context, codes []*models.BackupCode) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// Consume marks the unused code matching codeHash as used. Returns false
	// when no unused code matched, including when a concurrent verification
	// consumed it first; the update is conditional on used_at IS NULL.
	Consume(ctx context.Context, userID uuid.UUID, codeHash string, usedAt time.Time) (bool, error)
}
