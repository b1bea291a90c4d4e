package services

import (
	"context"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
)

// UserDirectorySvc manages accounts and credential checks.
type UserDirectorySvc interface {
	// CreateUser registers a new account. Fails with apperrors.ErrDuplicateUser.
	CreateUser(ctx context.Context, username, password, email string) (*domain.User, error)

	// Authenticate checks a username/password pair. Every failure is
	// apperrors.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// PasswordResetSvc issues and redeems single-use reset tokens.
type PasswordResetSvc interface {
	// RequestPasswordReset issues a token for the account with this email.
	// ok is false when no account matches; no token is issued then.
	RequestPasswordReset(ctx context.Context, email string) (token string, ok bool, err error)

	// VerifyResetToken checks a token without consuming it.
	VerifyResetToken(ctx context.Context, token string) error

	// ResetPassword consumes the token and sets the new password.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthSvcFacade combines the user directory and the reset flow.
type AuthSvcFacade interface {
	UserDirectorySvc
	PasswordResetSvc
}

// TokenSvcFacade issues and validates bearer access tokens bound to a session.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User, sessionID string) (string, time.Time, error)
	ParseAccessToken(ctx context.Context, token string) (*domain.Identity, error)
}

// ResetNotifier delivers a raw reset token to the account owner out of band.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, email, token string) error
}
