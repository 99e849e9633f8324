package user

import "foodcourt-be/internal/apperr"

var (
	// -- Authentication/Authorization --
	ErrAdminOnly       = apperr.Authorization("only food court owners can manage users")
	ErrRoleNotAllowed  = apperr.Authorization("role cannot be self-assigned")
	ErrInvalidPassword = apperr.Authorization("current password is incorrect")

	// -- Validation & Input --
	ErrInvalidName              = apperr.Validation("name must be between 2 and 50 characters")
	ErrInvalidEmail             = apperr.Validation("a valid email is required")
	ErrInvalidRole              = apperr.Validation("unknown role")
	ErrWeakPassword             = apperr.Validation("password must be 6-128 characters and contain a letter and a digit")
	ErrInvalidVerificationToken = apperr.Validation("invalid or expired verification token")

	// -- Resource State --
	ErrEmailExists  = apperr.Conflict("email already registered")
	ErrUserNotFound = apperr.NotFound("user not found")

	// -- Database & Operation Failures --
	ErrFailedCreateUser = apperr.Dependency("failed to create user")
	ErrFailedLoadUser   = apperr.Dependency("failed to load user")
	ErrFailedUpdateUser = apperr.Dependency("failed to update user")
)
