package analytics

import "foodcourt-be/internal/apperr"

var (
	ErrAdminOnly = apperr.Authorization("analytics are restricted to food court owners")

	ErrFailedLoadAnalytics = apperr.Dependency("failed to load analytics")
)
