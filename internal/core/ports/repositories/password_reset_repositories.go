package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
)

// PasswordResetRepositoryFacade stores password-reset tokens by hash.
type PasswordResetRepositoryFacade interface {
	// SaveResetToken persists a newly issued token.
	SaveResetToken(ctx context.Context, token domain.PasswordResetToken) error

	// FindResetToken returns the token with the given hash or apperrors.ErrNotFound.
	FindResetToken(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)

	// ConsumeResetToken marks a usable token as used and sets the owner's password hash
	// in one atomic step. It returns apperrors.ErrInvalidOrExpiredToken when the token
	// is unknown, expired or already used, and leaves everything unchanged in that case.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (userID string, err error)
}
