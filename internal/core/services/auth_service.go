package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	resetTokenBytes      = 32
	defaultResetTokenTTL = 24 * time.Hour
)

type newUserInput struct {
	Username string `validate:"required,min=3,max=64"`
	Email    string `validate:"required,email,max=320"`
	Password string `validate:"required,min=8,max=128"`
}

type authService struct {
	BaseService
	users    portsrepo.UserRepositoryFacade
	resets   portsrepo.PasswordResetRepositoryFacade
	hasher   *utils.PasswordHasher
	validate *validator.Validate
	resetTTL time.Duration
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthOption configures the auth service.
type AuthOption func(*authService)

// WithPasswordHasher overrides the PBKDF2 work factor, mostly for tests.
func WithPasswordHasher(h *utils.PasswordHasher) AuthOption {
	return func(s *authService) { s.hasher = h }
}

// WithResetTokenTTL sets how long a reset token stays redeemable.
func WithResetTokenTTL(ttl time.Duration) AuthOption {
	return func(s *authService) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AuthOption {
	return func(s *authService) { s.now = now }
}

// NewAuthService creates the user directory and password-reset service.
func NewAuthService(users portsrepo.UserRepositoryFacade, resets portsrepo.PasswordResetRepositoryFacade, opts ...AuthOption) portssvc.AuthSvcFacade {
	s := &authService{
		users:    users,
		resets:   resets,
		hasher:   utils.NewPasswordHasher(),
		validate: validator.New(),
		resetTTL: defaultResetTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

func (s *authService) CreateUser(ctx context.Context, username, password, email string) (*domain.User, error) {
	in := newUserInput{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, describeValidation(err))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicateUser) {
			s.LogError(ctx, err, "Failed to save user", slog.String("username", in.Username))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.LogInfo(ctx, "User created", slog.String("user_id", user.UserID))
	return &user, nil
}

// Authenticate fails closed: lookup errors and mismatches look identical to the caller.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "User lookup failed during login")
		}
		// same work as the found-user path
		s.hasher.Verify(password, s.dummy())
		return nil, apperrors.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, bool, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		s.LogError(ctx, err, "User lookup failed during reset request")
		return "", false, asStorageError(err)
	}

	raw, err := utils.GenerateSecureRandomString(resetTokenBytes)
	if err != nil {
		return "", false, err
	}
	now := s.now()
	token := domain.PasswordResetToken{
		TokenHash: utils.HashToken(raw),
		UserID:    user.UserID,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.resets.SaveResetToken(ctx, token); err != nil {
		s.LogError(ctx, err, "Failed to store reset token", slog.String("user_id", user.UserID))
		return "", false, asStorageError(err)
	}
	s.LogInfo(ctx, "Password reset issued", slog.String("user_id", user.UserID), slog.Time("expires_at", token.ExpiresAt))
	return raw, true, nil
}

func (s *authService) VerifyResetToken(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.ErrInvalidOrExpiredToken
	}
	stored, err := s.resets.FindResetToken(ctx, utils.HashToken(token))
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return asStorageError(err)
	}
	if !stored.Usable(s.now()) {
		return apperrors.ErrInvalidOrExpiredToken
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.ErrInvalidOrExpiredToken
	}
	if err := s.validate.Var(newPassword, "required,min=8,max=128"); err != nil {
		return fmt.Errorf("%w: password must be 8 to 128 characters", apperrors.ErrValidation)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	userID, err := s.resets.ConsumeResetToken(ctx, utils.HashToken(token), hash, s.now())
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidOrExpiredToken) {
			s.LogError(ctx, err, "Failed to consume reset token")
		}
		return err
	}
	s.LogInfo(ctx, "Password reset completed", slog.String("user_id", userID))
	return nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}
