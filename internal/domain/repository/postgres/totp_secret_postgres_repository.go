package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
)

// TOTPSecretRepositoryPostgres implements repository.TOTPSecretRepository on
// the 'mfa_totp_secrets' table. One row per user, enforced by a unique index.
type TOTPSecretRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewTOTPSecretRepositoryPostgres(pool *pgxpool.Pool) *TOTPSecretRepositoryPostgres {
	return &TOTPSecretRepositoryPostgres{pool: pool}
}

func (r *TOTPSecretRepositoryPostgres) Create(ctx context.Context, secret *models.TOTPSecret) error {
	query := `
		INSERT INTO mfa_totp_secrets (id, user_id, secret_key_encrypted, verified)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, secret.ID, secret.UserID, secret.SecretKeyEncrypted, secret.Verified)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique user_id
			return fmt.Errorf("TOTP secret already exists for user: %w", domainErrors.ErrInternal)
		}
		return fmt.Errorf("failed to create TOTP secret: %w", err)
	}
	return nil
}

func (r *TOTPSecretRepositoryPostgres) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.TOTPSecret, error) {
	query := `
		SELECT id, user_id, secret_key_encrypted, verified, created_at, updated_at
		FROM mfa_totp_secrets
		WHERE user_id = $1
	`
	s := &models.TOTPSecret{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.SecretKeyEncrypted, &s.Verified, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find TOTP secret: %w", err)
	}
	return s, nil
}

func (r *TOTPSecretRepositoryPostgres) MarkVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE mfa_totp_secrets SET verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark TOTP secret verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *TOTPSecretRepositoryPostgres) DeleteUnverifiedByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM mfa_totp_secrets WHERE user_id = $1 AND NOT verified`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete unverified TOTP secret: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TOTPSecretRepositoryPostgres) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM mfa_totp_secrets WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete TOTP secret: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ repository.TOTPSecretRepository = (*TOTPSecretRepositoryPostgres)(nil)
