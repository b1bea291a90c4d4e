package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestPasswordResetTokenUsedAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	unused := domain.PasswordResetToken{TokenHash: "h", UserID: "u", ExpiresAt: now}
	m := ToModelPasswordResetToken(unused)
	assert.False(t, m.UsedAt.Valid)
	assert.Nil(t, ToDomainPasswordResetToken(m).UsedAt)

	used := unused
	used.UsedAt = &now
	m = ToModelPasswordResetToken(used)
	assert.True(t, m.UsedAt.Valid)
	back := ToDomainPasswordResetToken(m)
	if assert.NotNil(t, back.UsedAt) {
		assert.True(t, now.Equal(*back.UsedAt))
	}
}
