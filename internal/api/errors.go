package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
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

// statusOverride remaps the default status of a domain code for one operation.
type statusOverride map[domainerrors.Code]int

// fromDomain converts a domain error, applying any per-operation override.
func fromDomain(err *domainerrors.Error, overrides statusOverride) *APIError {
	status := err.HTTPStatus()
	if s, ok := overrides[err.Code]; ok {
		status = s
	}
	return &APIError{
		status:  status,
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
}

// fail turns a service error into an API error. Causes of internal errors
// are logged and never returned to the client.
func (s *Server) fail(ctx context.Context, err error, overrides statusOverride) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		if domainErr.Code == domainerrors.CodeInternal {
			s.logger.ErrorContext(ctx, "request failed", "error", err, "request_id", RequestIDFromContext(ctx))
		}
		return fromDomain(domainErr, overrides)
	}

	if errors.Is(err, context.Canceled) {
		return &APIError{status: 499, Code: string(domainerrors.CodeInternal), Message: "request canceled"}
	}

	s.logger.ErrorContext(ctx, "unexpected error", "error", err, "request_id", RequestIDFromContext(ctx))
	return &APIError{
		status:  http.StatusInternalServerError,
		Code:    string(domainerrors.CodeInternal),
		Message: "internal error",
	}
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr
			}
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomain(domainErr, nil)
			}
		}

		// Request bodies that fail schema checks are plain bad requests.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if details := errorDetails(errs); len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// errorDetails collects huma's per-field messages keyed by field path.
func errorDetails(errs []error) map[string]string {
	details := make(map[string]string)
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		field := strings.TrimPrefix(detail.Location, "body.")
		if field == "" {
			field = "body"
		}
		details[field] = detail.Message
	}
	return details
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusLengthRequired:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeAlreadyExists)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
