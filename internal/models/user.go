package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string // stored lowercased and trimmed, unique
	PhoneNumber  string // format-validated, unique
	PasswordHash string // only loaded when explicitly requested for verification
	Role         string // "user" or "admin"
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Reset state. Both fields are set together when a password reset is in
	// flight and cleared together when the token is consumed or swept.
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
}

// HasPendingReset reports whether a reset token is outstanding and unexpired.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now)
}
