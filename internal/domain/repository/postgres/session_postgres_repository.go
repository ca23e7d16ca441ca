package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
)

// SessionRepositoryPostgres implements repository.SessionRepository on the
// 'mfa_sessions' table. The signed token itself is never stored; the row is
// the authoritative record a central validator would consult.
type SessionRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewSessionRepositoryPostgres(pool *pgxpool.Pool) *SessionRepositoryPostgres {
	return &SessionRepositoryPostgres{pool: pool}
}

func (r *SessionRepositoryPostgres) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO mfa_sessions (id, user_id, device_fingerprint, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID, session.UserID, session.DeviceFingerprint, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryPostgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `
		SELECT id, user_id, device_fingerprint, created_at, expires_at, revoked_at
		FROM mfa_sessions
		WHERE id = $1
	`
	s := &models.Session{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.DeviceFingerprint, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return s, nil
}

func (r *SessionRepositoryPostgres) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	// Idempotent: revoking an already-revoked session keeps the original
	// revocation time.
	if _, err := r.pool.Exec(ctx,
		`UPDATE mfa_sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, revokedAt); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryPostgres) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM mfa_sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ repository.SessionRepository = (*SessionRepositoryPostgres)(nil)
