package models

import (
	"database/sql"
	"time"
)

// PasswordResetToken is the row shape of the password_reset_tokens table.
type PasswordResetToken struct {
	TokenHash string       `db:"token_hash"`
	UserID    string       `db:"user_id"`
	ExpiresAt time.Time    `db:"expires_at"`
	UsedAt    sql.NullTime `db:"used_at"`
	CreatedAt time.Time    `db:"created_at"`
}
