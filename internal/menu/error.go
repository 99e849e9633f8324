package menu

import (
	"errors"

	"foodcourt-be/internal/apperr"
)

var (
	// -- Validation & Input --
	ErrInvalidName  = apperr.Validation("menu item name is required")
	ErrInvalidPrice = apperr.Validation("price cannot be negative")
	ErrInvalidStock = apperr.Validation("stock cannot be negative")

	// -- Resource State --
	ErrItemNotFound = apperr.NotFound("menu item not found")

	// -- Cache --
	ErrCacheMiss = errors.New("cache miss")
)
