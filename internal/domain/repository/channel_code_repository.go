package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
)

// ChannelCodeRepository persists one-time codes for SMS/email methods.
type ChannelCodeRepository interface {
	Create(ctx context.Context, code *models.ChannelCode) error

	// Consume marks the unused, unexpired code matching codeHash for the given
	// user and method as used. Exact-match semantics: the hash either matches
	// or it does not. Returns false when nothing matched.
	Consume(ctx context.Context, userID uuid.UUID, methodType models.MethodType, codeHash string, usedAt time.Time) (bool, error)

	// InvalidateActive expires outstanding codes before a new one is issued.
	InvalidateActive(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error
}
