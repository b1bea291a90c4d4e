package dto

import (
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/SscSPs/sheet_dashboard/internal/core/session"
)

// SignupRequest creates an account. ConfirmPassword must repeat Password.
type SignupRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// LoginRequest represents the login credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      UserResponse    `json:"user"`
	Session   SessionResponse `json:"session"`
}

// ViewRequest switches between the login and signup forms.
type ViewRequest struct {
	View string `json:"view" binding:"required,oneof=login signup"`
}

// PasswordResetRequest asks for a reset link for Email.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordResetVerifyRequest checks a token from a reset link.
type PasswordResetVerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// PasswordResetConfirmRequest sets a new password with a reset token.
type PasswordResetConfirmRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type UserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// SessionResponse is the client-visible part of a session.
type SessionResponse struct {
	State         session.State `json:"state"`
	Authenticated bool          `json:"authenticated"`
	UserID        string        `json:"user_id,omitempty"`
	Username      string        `json:"username,omitempty"`
	CurrentPage   string        `json:"current_page,omitempty"`
}

func ToSessionResponse(sess *session.Context) SessionResponse {
	if sess == nil {
		return SessionResponse{State: session.StateLogin}
	}
	return SessionResponse{
		State:         sess.State,
		Authenticated: sess.Authenticated(),
		UserID:        sess.UserID,
		Username:      sess.Username,
		CurrentPage:   sess.CurrentPage,
	}
}

// MessageResponse carries a user-visible message and the resulting session state.
type MessageResponse struct {
	Message string          `json:"message"`
	Session SessionResponse `json:"session"`
}
