package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"foodcourt-be/internal/apperr"
	"foodcourt-be/internal/logger"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps a domain error to its HTTP status. Wrapped
// persistence causes are logged, never returned to the client.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	respondError(w, status, code, msg)
}

func classify(err error) (int, string, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "timeout", "operation timed out"
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "internal", "internal server error"
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		return http.StatusBadRequest, appErr.Kind.String(), appErr.Message
	case apperr.KindNotFound:
		return http.StatusNotFound, appErr.Kind.String(), appErr.Message
	case apperr.KindAuthorization:
		return http.StatusForbidden, appErr.Kind.String(), appErr.Message
	case apperr.KindConflict:
		return http.StatusConflict, appErr.Kind.String(), appErr.Message
	case apperr.KindDependency:
		return http.StatusServiceUnavailable, appErr.Kind.String(), appErr.Message
	default:
		return http.StatusInternalServerError, "internal", "internal server error"
	}
}
