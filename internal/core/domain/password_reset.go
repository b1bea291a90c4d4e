package domain

import "time"

// PasswordResetToken is a single-use password reset grant.
// Only the SHA-256 hash of the raw token is ever stored.
type PasswordResetToken struct {
	TokenHash string     `json:"-"`
	UserID    string     `json:"userID"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Usable reports whether the token can still be redeemed at the given instant.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
