package report

import "foodcourt-be/internal/apperr"

var (
	// -- Authentication/Authorization --
	ErrAdminOnly      = apperr.Authorization("reports are restricted to food court owners")
	ErrNotReportOwner = apperr.Authorization("not authorized to view this report")

	// -- Validation & Input --
	ErrInvalidRange = apperr.Validation("startDate must not be after endDate")

	// -- Resource State --
	ErrReportNotFound = apperr.NotFound("report not found")

	// -- Database & Operation Failures --
	ErrFailedLoadOrders = apperr.Dependency("failed to load orders for report")
	ErrFailedSave       = apperr.Dependency("failed to save report")
	ErrFailedLoad       = apperr.Dependency("failed to load report")
	ErrFailedExport     = apperr.Dependency("failed to export report")
)
