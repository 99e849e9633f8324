package rating

import "foodcourt-be/internal/apperr"

var (
	// -- Validation & Input --
	ErrInvalidScore = apperr.Validation("rating must be between 1 and 5")

	// -- Resource State --
	ErrStallNotFound = apperr.NotFound("stall not found")

	// -- Database & Operation Failures --
	ErrFailedSaveRating = apperr.Dependency("failed to save rating")
	ErrFailedLoadRating = apperr.Dependency("failed to load ratings")
)
