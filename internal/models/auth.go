package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `form:"username" validate:"required"`
	Password  string `form:"password" validate:"required"`
	IP        string `form:"-"`
	UserAgent string `form:"-"`
}

// LoginResult carries the signed session cookie value.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword     string `form:"old_password" label:"current password" validate:"required"`
	NewPassword     string `form:"new_password" label:"new password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" label:"password confirmation"`
}

// DeleteAccountRequest confirms account removal with the current password.
type DeleteAccountRequest struct {
	Password string `form:"password_confirm" label:"password" validate:"required"`
}

// SessionClaims is the JWT payload stored in the session cookie. The token ID
// references a row in the sessions table.
type SessionClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// RequestMeta captures client details recorded with sessions and audit logs.
type RequestMeta struct {
	IP        string
	UserAgent string
}
