package order

import "foodcourt-be/internal/apperr"

var (
	// -- Authentication/Authorization --
	ErrUnauthorized = apperr.Authorization("not authorized to change or view this order")

	// -- Validation & Input --
	ErrEmptyCart            = apperr.Validation("cart is empty")
	ErrInvalidStatus        = apperr.Validation("unknown order status")
	ErrInvalidPaymentMethod = apperr.Validation("unsupported payment method")
	ErrInvalidFilter        = apperr.Validation("invalid order filter")

	// -- Resource State --
	ErrOrderNotFound     = apperr.NotFound("order not found")
	ErrItemUnavailable   = apperr.Conflict("menu item is no longer available")
	ErrInsufficientStock = apperr.Conflict("insufficient stock for menu item")
	ErrIllegalTransition = apperr.Conflict("status transition not allowed")
	ErrOrderClosed       = apperr.Conflict("order is already completed or cancelled")
	ErrConcurrentUpdate  = apperr.Conflict("order was modified concurrently, reload and retry")

	// -- Database & Operation Failures --
	ErrFailedCreateOrder = apperr.Dependency("failed to create order")
	ErrFailedLoadOrder   = apperr.Dependency("failed to load order")
	ErrFailedUpdateOrder = apperr.Dependency("failed to update order")
)
