package mapping

import (
	"database/sql"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/SscSPs/sheet_dashboard/internal/models"
)

func ToModelPasswordResetToken(d domain.PasswordResetToken) models.PasswordResetToken {
	m := models.PasswordResetToken{
		TokenHash: d.TokenHash,
		UserID:    d.UserID,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
	if d.UsedAt != nil {
		m.UsedAt = sql.NullTime{Time: *d.UsedAt, Valid: true}
	}
	return m
}

func ToDomainPasswordResetToken(m models.PasswordResetToken) domain.PasswordResetToken {
	d := domain.PasswordResetToken{
		TokenHash: m.TokenHash,
		UserID:    m.UserID,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
	if m.UsedAt.Valid {
		usedAt := m.UsedAt.Time
		d.UsedAt = &usedAt
	}
	return d
}
