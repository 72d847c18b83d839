package graph

import (
	"context"
	"log/slog"

	"postboard/internal/models"
	"postboard/internal/observability"
)

// Error is a field error carrying a client-safe message and an error code
// in its extensions.
type Error struct {
	Code      string
	Message   string
	Operation string
	cause     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Extensions is read by the executor and copied into the response.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":      e.Code,
		"operation": e.Operation,
	}
}

// mapError converts a service error into a field error. Internal causes are
// logged and replaced by a generic message.
func mapError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		observability.Logger.ErrorContext(ctx, "graphql operation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}
	return &Error{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Operation: operation,
		cause:     err,
	}
}
