package model

import "time"

// Roles assignable to a user account.
const (
	RoleGuest  = "guest"
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is an account in the system. PasswordHash never leaves the service
// layer; JSON marshalling omits it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VerificationCode is a short-lived email confirmation code.
type VerificationCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its expiry.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
