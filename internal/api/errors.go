package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/grimoireapp/grimoire-server/internal/http/response"
)

// APIError implements huma.StatusError with the same {"error": message}
// body the form endpoints write.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Message string `json:"error" doc:"Human-readable error message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to report domain and store errors
// through response.Describe. Call it before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if err == nil {
				continue
			}
			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				// Request validation failures read like the form endpoints' messages.
				return &APIError{status: http.StatusBadRequest, Message: detailMessage(detail)}
			}
			if code, msg := response.Describe(err); code != http.StatusInternalServerError {
				return &APIError{status: code, Message: msg}
			}
		}

		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		if status >= http.StatusInternalServerError {
			message = "Internal server error."
		}
		return &APIError{status: status, Message: message}
	}
}

func detailMessage(d *huma.ErrorDetail) string {
	if d.Location == "" {
		return d.Message
	}
	return d.Location + ": " + d.Message
}
