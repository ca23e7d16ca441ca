package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
)

// ChallengeRepositoryPostgres implements repository.ChallengeRepository on
// the 'mfa_challenges' table. Every mutation is a conditional UPDATE keyed
// on status = 'pending', which is what makes concurrent verifications of the
// same token safe without application locks.
type ChallengeRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewChallengeRepositoryPostgres(pool *pgxpool.Pool) *ChallengeRepositoryPostgres {
	return &ChallengeRepositoryPostgres{pool: pool}
}

func (r *ChallengeRepositoryPostgres) Create(ctx context.Context, c *models.Challenge) error {
	query := `
		INSERT INTO mfa_challenges
			(id, token, user_id, method_type, status, attempt_count, issued_at, expires_at, session_id, device_fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Token, c.UserID, c.MethodType, c.Status, c.AttemptCount,
		c.IssuedAt, c.ExpiresAt, c.SessionID, c.DeviceFingerprint,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique token
			return fmt.Errorf("challenge token collision: %w", err)
		}
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

func (r *ChallengeRepositoryPostgres) FindByToken(ctx context.Context, token string) (*models.Challenge, error) {
	query := `
		SELECT id, token, user_id, method_type, status, attempt_count, issued_at, expires_at,
		       session_id, device_fingerprint, verified_at
		FROM mfa_challenges
		WHERE token = $1
	`
	c := &models.Challenge{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&c.ID, &c.Token, &c.UserID, &c.MethodType, &c.Status, &c.AttemptCount,
		&c.IssuedAt, &c.ExpiresAt, &c.SessionID, &c.DeviceFingerprint, &c.VerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find challenge by token: %w", err)
	}
	return c, nil
}

func (r *ChallengeRepositoryPostgres) IncrementAttempts(ctx context.Context, token string) (int, error) {
	// Atomic read-modify-write: two concurrent failures both land, neither
	// observes a stale pre-increment count.
	query := `
		UPDATE mfa_challenges
		SET attempt_count = attempt_count + 1
		WHERE token = $1 AND status = 'pending'
		RETURNING attempt_count
	`
	var count int
	err := r.pool.QueryRow(ctx, query, token).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment attempt count: %w", err)
	}
	return count, nil
}

func (r *ChallengeRepositoryPostgres) MarkVerified(ctx context.Context, token string, verifiedAt time.Time) (bool, error) {
	query := `
		UPDATE mfa_challenges
		SET status = 'verified', verified_at = $2
		WHERE token = $1 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query, token, verifiedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark challenge verified: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ChallengeRepositoryPostgres) MarkExpired(ctx context.Context, token string) error {
	return r.transition(ctx, token, models.ChallengeStatusExpired)
}

func (r *ChallengeRepositoryPostgres) MarkLocked(ctx context.Context, token string) error {
	return r.transition(ctx, token, models.ChallengeStatusLocked)
}

func (r *ChallengeRepositoryPostgres) transition(ctx context.Context, token string, to models.ChallengeStatus) error {
	query := `UPDATE mfa_challenges SET status = $2 WHERE token = $1 AND status = 'pending'`
	if _, err := r.pool.Exec(ctx, query, token, to); err != nil {
		return fmt.Errorf("failed to transition challenge to %s: %w", to, err)
	}
	// Zero rows means the challenge already reached a terminal state, which
	// is exactly what "terminal states are never left" requires.
	return nil
}

var _ repository.ChallengeRepository = (*ChallengeRepositoryPostgres)(nil)
