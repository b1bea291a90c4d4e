package pgsql

import (
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres-backed repository. The sheet source
// is not a database concern and is set by the caller.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:       newPgxUserRepository(dbPool),
		ResetTokenRepo: newPgxPasswordResetRepository(dbPool),
		SettingsRepo:   newPgxSettingsRepository(dbPool),
	}
}
