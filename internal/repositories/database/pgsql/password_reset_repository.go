package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/sheet_dashboard/internal/models"
	"github.com/SscSPs/sheet_dashboard/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPasswordResetRepository struct {
	BaseRepository
	txm portsrepo.TransactionManager
}

func newPgxPasswordResetRepository(db *pgxpool.Pool) portsrepo.PasswordResetRepositoryFacade {
	r := &PgxPasswordResetRepository{BaseRepository: BaseRepository{Pool: db}}
	r.txm = &r.BaseRepository
	return r
}

var _ portsrepo.PasswordResetRepositoryFacade = (*PgxPasswordResetRepository)(nil)

func (r *PgxPasswordResetRepository) SaveResetToken(ctx context.Context, token domain.PasswordResetToken) error {
	m := mapping.ToModelPasswordResetToken(token)
	query := `
        INSERT INTO password_reset_tokens (token_hash, user_id, expires_at, used_at, created_at)
        VALUES ($1, $2, $3, $4, $5);
    `
	if _, err := r.Pool.Exec(ctx, query, m.TokenHash, m.UserID, m.ExpiresAt, m.UsedAt, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to save reset token: %w", storageError(err))
	}
	return nil
}

func (r *PgxPasswordResetRepository) FindResetToken(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	query := `
        SELECT token_hash, user_id, expires_at, used_at, created_at
        FROM password_reset_tokens
        WHERE token_hash = $1;
    `
	var m models.PasswordResetToken
	err := r.Pool.QueryRow(ctx, query, tokenHash).Scan(&m.TokenHash, &m.UserID, &m.ExpiresAt, &m.UsedAt, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reset token: %w", storageError(err))
	}
	d := mapping.ToDomainPasswordResetToken(m)
	return &d, nil
}

// ConsumeResetToken marks the token used and updates the password inside one transaction.
// The conditional UPDATE makes concurrent redemptions race safely: only one sees a row.
func (r *PgxPasswordResetRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (string, error) {
	tx, err := r.txm.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.txm.Rollback(ctx, tx) }()

	var userID string
	err = tx.QueryRow(ctx, `
        UPDATE password_reset_tokens
        SET used_at = $2
        WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
        RETURNING user_id;
    `, tokenHash, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrInvalidOrExpiredToken
		}
		return "", fmt.Errorf("failed to consume reset token: %w", storageError(err))
	}

	tag, err := tx.Exec(ctx, `
        UPDATE users SET password_hash = $1, last_updated_at = $2
        WHERE user_id = $3;
    `, newPasswordHash, now, userID)
	if err != nil {
		return "", fmt.Errorf("failed to update password: %w", storageError(err))
	}
	if tag.RowsAffected() == 0 {
		return "", apperrors.ErrInvalidOrExpiredToken
	}

	if err := r.txm.Commit(ctx, tx); err != nil {
		return "", err
	}
	return userID, nil
}
