// Package memory holds process-local repositories used when no database is
// configured and in service tests.
package memory

import (
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
)

// NewRepositoryProvider returns fresh, empty in-memory repositories.
// Users and reset tokens share one store so token consumption can update
// the owner's password atomically.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	users := NewUserStore()
	return portsrepo.RepositoryProvider{
		UserRepo:       users,
		ResetTokenRepo: users,
		SettingsRepo:   NewSettingsRepository(),
	}
}
