package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
)

// ChannelCodeRepositoryPostgres implements repository.ChannelCodeRepository
// on the 'mfa_channel_codes' table.
type ChannelCodeRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewChannelCodeRepositoryPostgres(pool *pgxpool.Pool) *ChannelCodeRepositoryPostgres {
	return &ChannelCodeRepositoryPostgres{pool: pool}
}

func (r *ChannelCodeRepositoryPostgres) Create(ctx context.Context, code *models.ChannelCode) error {
	query := `
		INSERT INTO mfa_channel_codes (id, user_id, method_type, code_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, code.ID, code.UserID, code.MethodType, code.CodeHash, code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create channel code: %w", err)
	}
	return nil
}

func (r *ChannelCodeRepositoryPostgres) Consume(ctx context.Context, userID uuid.UUID, methodType models.MethodType, codeHash string, usedAt time.Time) (bool, error) {
	// Single-use guard lives in the WHERE clause: used_at IS NULL plus the
	// code's own expiry window.
	query := `
		UPDATE mfa_channel_codes
		SET used_at = $4
		WHERE user_id = $1 AND method_type = $2 AND code_hash = $3
		  AND used_at IS NULL AND expires_at > $4
	`
	tag, err := r.pool.Exec(ctx, query, userID, methodType, codeHash, usedAt)
	if err != nil {
		return false, fmt.Errorf("failed to consume channel code: %w", err)
	}
	return tag.RowsAffected() >= 1, nil
}

func (r *ChannelCodeRepositoryPostgres) InvalidateActive(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error {
	query := `
		UPDATE mfa_channel_codes
		SET expires_at = NOW()
		WHERE user_id = $1 AND method_type = $2 AND used_at IS NULL AND expires_at > NOW()
	`
	if _, err := r.pool.Exec(ctx, query, userID, methodType); err != nil {
		return fmt.Errorf("failed to invalidate channel codes: %w", err)
	}
	return nil
}

var _ repository.ChannelCodeRepository = (*ChannelCodeRepositoryPostgres)(nil)
