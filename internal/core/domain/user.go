package domain

// User represents a registered dashboard user.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	AuditFields
}

func (u *User) GetUserID() string   { return u.UserID }
func (u *User) GetUsername() string { return u.Username }
func (u *User) GetEmail() string    { return u.Email }
