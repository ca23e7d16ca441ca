package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
)

// BackupCodeRepositoryPostgres implements repository.BackupCodeRepository on
// the 'mfa_backup_codes' table.
type BackupCodeRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewBackupCodeRepositoryPostgres(pool *pgxpool.Pool) *BackupCodeRepositoryPostgres {
	return &BackupCodeRepositoryPostgres{pool: pool}
}

func (r *BackupCodeRepositoryPostgres) CreateMultiple(ctx context.Context, codes []*models.BackupCode) error {
	if len(codes) == 0 {
		return nil
	}
	rows := make([][]interface{}, len(codes))
	for i, code := range codes {
		rows[i] = []interface{}{code.ID, code.UserID, code.CodeHash, code.UsedAt}
	}
	copyCount, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"mfa_backup_codes"},
		[]string{"id", "user_id", "code_hash", "used_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to create backup codes: %w", err)
	}
	if copyCount != int64(len(codes)) {
		return fmt.Errorf("expected to create %d backup codes, created %d", len(codes), copyCount)
	}
	return nil
}

func (r *BackupCodeRepositoryPostgres) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM mfa_backup_codes WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete backup codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *BackupCodeRepositoryPostgres) CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM mfa_backup_codes WHERE user_id = $1 AND used_at IS NULL`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count backup codes: %w", err)
	}
	return count, nil
}

func (r *BackupCodeRepositoryPostgres) Consume(ctx context.Context, userID uuid.UUID, codeHash string, usedAt time.Time) (bool, error) {
	// Conditional on used_at IS NULL: of two concurrent submissions of the
	// same code exactly one sees RowsAffected = 1.
	query := `
		UPDATE mfa_backup_codes
		SET used_at = $3
		WHERE user_id = $1 AND code_hash = $2 AND used_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, userID, codeHash, usedAt)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

var _ repository.BackupCodeRepository = (*BackupCodeRepositoryPostgres)(nil)
