package payment

import "foodcourt-be/internal/apperr"

var (
	// -- Authentication/Authorization --
	ErrNotOrderOwner = apperr.Authorization("not authorized to pay for this order")
	ErrNotPayer      = apperr.Authorization("not authorized to view this payment")

	// -- Validation & Input --
	ErrInvalidMethod  = apperr.Validation("unsupported payment method")
	ErrMissingOrderID = apperr.Validation("order id is required")

	// -- Resource State --
	ErrOrderNotFound   = apperr.NotFound("order not found")
	ErrPaymentNotFound = apperr.NotFound("payment not found")
	ErrAlreadyPaid     = apperr.Conflict("order is already paid")
	ErrDuplicateTxn    = apperr.Conflict("transaction id already recorded")

	// -- Database & Operation Failures --
	ErrFailedProcess     = apperr.Dependency("failed to process payment")
	ErrFailedLoadPayment = apperr.Dependency("failed to load payment")
)
