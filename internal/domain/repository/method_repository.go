package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
)

// MethodRepository persists enrolled MFA methods.
type MethodRepository interface {
	Create(ctx context.Context, method *models.MFAMethod) error
	FindByUserIDAndType(ctx context.Context, userID uuid.UUID, methodType models.MethodType) (*models.MFAMethod, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.MFAMethod, error)
	Update(ctx context.Context, method *models.MFAMethod) error

	// SetEnabled toggles a method. The repository does not check setup state;
	// that invariant belongs to the service.
	SetEnabled(ctx context.Context, userID uuid.UUID, methodType models.MethodType, enabled bool) error

	// SetPrimary atomically clears the previous primary flag for the user and
	// sets it on methodType, in a single transaction.
	SetPrimary(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error

	// RecordUsage bumps last_used_at and usage_count after a successful
	// verification. The only mutation verification is allowed to make here.
	RecordUsage(ctx context.Context, userID uuid.UUID, methodType models.MethodType, usedAt time.Time) error
}
