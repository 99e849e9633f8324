package user

import (
	"time"

	"foodcourt-be/internal/auth"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	Phone        string    `json:"phone"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// VerificationToken is only set between registration and the first
	// successful verification.
	VerificationToken string `json:"-"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     auth.Role
	Phone    string
}

// UpdateProfileParams leaves nil fields untouched.
type UpdateProfileParams struct {
	UserID string
	Name   *string
	Phone  *string
}
