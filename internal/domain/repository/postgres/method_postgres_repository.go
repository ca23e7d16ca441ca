package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
)

// MethodRepositoryPostgres implements repository.MethodRepository on the
// 'mfa_methods' table.
type MethodRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewMethodRepositoryPostgres(pool *pgxpool.Pool) *MethodRepositoryPostgres {
	return &MethodRepositoryPostgres{pool: pool}
}

const methodColumns = `id, user_id, type, enabled, is_primary, destination, setup_completed_at, last_used_at, usage_count, created_at, updated_at`

func (r *MethodRepositoryPostgres) Create(ctx context.Context, method *models.MFAMethod) error {
	query := `
		INSERT INTO mfa_methods (id, user_id, type, enabled, is_primary, destination, setup_completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		method.ID, method.UserID, method.Type, method.Enabled, method.IsPrimary,
		method.Destination, method.SetupCompletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique (user_id, type)
			return fmt.Errorf("method %s already enrolled for user: %w", method.Type, domainErrors.ErrInternal)
		}
		return fmt.Errorf("failed to create MFA method: %w", err)
	}
	return nil
}

func (r *MethodRepositoryPostgres) FindByUserIDAndType(ctx context.Context, userID uuid.UUID, methodType models.MethodType) (*models.MFAMethod, error) {
	query := `SELECT ` + methodColumns + ` FROM mfa_methods WHERE user_id = $1 AND type = $2`
	m := &models.MFAMethod{}
	err := r.pool.QueryRow(ctx, query, userID, methodType).Scan(
		&m.ID, &m.UserID, &m.Type, &m.Enabled, &m.IsPrimary, &m.Destination,
		&m.SetupCompletedAt, &m.LastUsedAt, &m.UsageCount, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find MFA method: %w", err)
	}
	return m, nil
}

func (r *MethodRepositoryPostgres) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.MFAMethod, error) {
	query := `SELECT ` + methodColumns + ` FROM mfa_methods WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query MFA methods: %w", err)
	}
	defer rows.Close()

	var methods []*models.MFAMethod
	for rows.Next() {
		m := &models.MFAMethod{}
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Type, &m.Enabled, &m.IsPrimary, &m.Destination,
			&m.SetupCompletedAt, &m.LastUsedAt, &m.UsageCount, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan MFA method: %w", err)
		}
		methods = append(methods, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating MFA method rows: %w", rows.Err())
	}
	return methods, nil
}

func (r *MethodRepositoryPostgres) Update(ctx context.Context, method *models.MFAMethod) error {
	query := `
		UPDATE mfa_methods
		SET enabled = $2, is_primary = $3, destination = $4, setup_completed_at = $5, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		method.ID, method.Enabled, method.IsPrimary, method.Destination, method.SetupCompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update MFA method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *MethodRepositoryPostgres) SetEnabled(ctx context.Context, userID uuid.UUID, methodType models.MethodType, enabled bool) error {
	// Disabling also drops the primary flag so a disabled method can never
	// remain primary.
	query := `
		UPDATE mfa_methods
		SET enabled = $3, is_primary = CASE WHEN $3 THEN is_primary ELSE FALSE END, updated_at = NOW()
		WHERE user_id = $1 AND type = $2
	`
	tag, err := r.pool.Exec(ctx, query, userID, methodType, enabled)
	if err != nil {
		return fmt.Errorf("failed to toggle MFA method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *MethodRepositoryPostgres) SetPrimary(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error {
	// Clear-then-set inside one transaction keeps the at-most-one-primary
	// invariant under concurrent calls; the partial unique index backs it up.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE mfa_methods SET is_primary = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_primary`,
		userID,
	); err != nil {
		return fmt.Errorf("failed to clear primary flag: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE mfa_methods SET is_primary = TRUE, updated_at = NOW() WHERE user_id = $1 AND type = $2 AND enabled`,
		userID, methodType,
	)
	if err != nil {
		return fmt.Errorf("failed to set primary flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *MethodRepositoryPostgres) RecordUsage(ctx context.Context, userID uuid.UUID, methodType models.MethodType, usedAt time.Time) error {
	query := `
		UPDATE mfa_methods
		SET last_used_at = $3, usage_count = usage_count + 1, updated_at = NOW()
		WHERE user_id = $1 AND type = $2
	`
	tag, err := r.pool.Exec(ctx, query, userID, methodType, usedAt)
	if err != nil {
		return fmt.Errorf("failed to record method usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

var _ repository.MethodRepository = (*MethodRepositoryPostgres)(nil)
