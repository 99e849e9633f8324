package cart

import "foodcourt-be/internal/apperr"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = apperr.Validation("quantity must be at least 1")
	ErrMissingItemID   = apperr.Validation("menu item id is required")

	// -- Resource State --
	ErrLineNotFound        = apperr.NotFound("cart line not found")
	ErrOutOfStock          = apperr.Conflict("requested quantity exceeds available stock")
	ErrMenuItemUnavailable = apperr.Conflict("menu item is not available")

	// -- Database & Operation Failures --
	ErrFailedLoadCart = apperr.Dependency("failed to load cart")
	ErrFailedSaveCart = apperr.Dependency("failed to save cart")
)
