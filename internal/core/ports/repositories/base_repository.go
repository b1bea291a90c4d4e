package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager opens and finishes Postgres transactions for repositories
// that must change more than one table atomically, such as redeeming a
// password-reset token and storing the new hash.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback is safe to defer after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
