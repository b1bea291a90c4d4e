package models

import "time"

// AuditFields mirrors the audit columns shared by persisted rows.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

// User is the row shape of the users table.
type User struct {
	UserID       string `db:"user_id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	AuditFields
}
