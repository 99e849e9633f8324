package stall

import "foodcourt-be/internal/apperr"

var (
	// -- Authentication/Authorization --
	ErrNotStaff = apperr.Authorization("only stall or food court owners can manage stalls")
	ErrNotOwner = apperr.Authorization("not authorized to manage this stall")

	// -- Validation & Input --
	ErrInvalidName = apperr.Validation("stall name is required")
	ErrInvalidRent = apperr.Validation("rent cannot be negative")

	// -- Resource State --
	ErrStallNotFound = apperr.NotFound("stall not found")
)
