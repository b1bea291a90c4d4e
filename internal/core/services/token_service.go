package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/platform/config"
	"github.com/SscSPs/sheet_dashboard/internal/utils"
)

// tokenService issues JWT access tokens whose jti is the server-side session id.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(_ context.Context, user *domain.User, sessionID string) (string, time.Time, error) {
	return utils.GenerateJWT(user.UserID, user.Username, sessionID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
}

// ParseAccessToken validates a bearer token. Every failure is apperrors.ErrUnauthorized.
func (s *tokenService) ParseAccessToken(_ context.Context, token string) (*domain.Identity, error) {
	claims, err := utils.ParseAndValidateJWT(token, s.cfg.JWTSecret, s.cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	id := &domain.Identity{
		UserID:    claims.Subject,
		Username:  claims.Username,
		SessionID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
