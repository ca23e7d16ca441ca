package repository

import (
	"context"
	"time"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
)

// ChallengeRepository persists verification challenges. All state mutations
// are conditional updates so that two concurrent verifications of the same
// token cannot under-count attempts or both succeed.
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	FindByToken(ctx context.Context, token string) (*models.Challenge, error)

	// IncrementAttempts adds one to attempt_count, only while the challenge is
	// still pending, and returns the post-increment count.
	IncrementAttempts(ctx context.Context, token string) (int, error)

	// MarkVerified transitions pending → verified. Returns false when the
	// challenge was no longer pending (lost race, expired, locked).
	MarkVerified(ctx context.Context, token string, verifiedAt time.Time) (bool, error)

	// MarkExpired transitions pending → expired.
	MarkExpired(ctx context.Context, token string) error

	// MarkLocked transitions pending → locked.
	MarkLocked(ctx context.Context, token string) error
}
