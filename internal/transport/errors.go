package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/domain/project"
	"github.com/rpggio/demobox/internal/domain/sandbox"
)

// ErrBadRequest indicates a malformed request body or query.
var ErrBadRequest = errors.New("bad request")

// APIError is the error object returned by the REST API.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// MapError maps domain errors to an HTTP status and API error.
func MapError(err error) (int, APIError) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, APIError{Code: "UNAUTHORIZED", Message: "missing or invalid bearer token", RecoveryHint: "Sign in again"}
	case errors.Is(err, ErrMissingSession):
		return http.StatusBadRequest, APIError{Code: "MISSING_SESSION", Message: err.Error(), RecoveryHint: "Send the Demo-Session-Id header"}
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, APIError{Code: "BAD_REQUEST", Message: err.Error()}
	case errors.Is(err, sandbox.ErrSessionNotFound):
		return http.StatusNotFound, APIError{Code: "SESSION_NOT_FOUND", Message: "demo session not found", RecoveryHint: "Reload the page to start a new demo"}
	case errors.Is(err, project.ErrProjectNotFound):
		return http.StatusNotFound, APIError{Code: "PROJECT_NOT_FOUND", Message: err.Error(), RecoveryHint: "List projects to get valid IDs"}
	case errors.Is(err, project.ErrInvalidPatch):
		return http.StatusUnprocessableEntity, APIError{Code: "INVALID_PATCH", Message: err.Error()}
	case errors.Is(err, preference.ErrInvalidTheme):
		return http.StatusUnprocessableEntity, APIError{Code: "INVALID_THEME", Message: err.Error(), RecoveryHint: "Use light, dark or system"}
	case errors.Is(err, sandbox.ErrRateLimited):
		return http.StatusTooManyRequests, APIError{Code: "RATE_LIMITED", Message: "too many edits", RecoveryHint: "Slow down and retry"}
	case errors.Is(err, sandbox.ErrSessionLimit):
		return http.StatusServiceUnavailable, APIError{Code: "SESSION_LIMIT", Message: "demo is at capacity", RecoveryHint: "Try again later"}
	default:
		return http.StatusInternalServerError, APIError{Code: "INTERNAL", Message: "internal error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := MapError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
