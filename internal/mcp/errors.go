package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/domain/project"
	"github.com/rpggio/demobox/internal/domain/sandbox"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sandbox.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "demo session not found", RecoveryHint: "Call start_demo for a new session"}
	case errors.Is(err, sandbox.ErrSessionLimit):
		return &APIError{Code: "SESSION_LIMIT", Message: "demo is at capacity", RecoveryHint: "Retry later"}
	case errors.Is(err, sandbox.ErrRateLimited):
		return &APIError{Code: "RATE_LIMITED", Message: "too many edits", RecoveryHint: "Wait before editing again"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_demo_projects for valid IDs"}
	case errors.Is(err, project.ErrInvalidPatch):
		return &APIError{Code: "INVALID_PATCH", Message: err.Error()}
	case errors.Is(err, preference.ErrInvalidTheme):
		return &APIError{Code: "INVALID_THEME", Message: err.Error(), RecoveryHint: "Use light, dark or system"}
	default:
		return nil
	}
}

// toolError converts err into the error a tool handler returns.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
