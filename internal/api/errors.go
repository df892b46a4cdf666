package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// APIError implements huma.StatusError. It carries a domain error code to the
// envelope.
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

// RegisterErrorHandler configures huma to report domain errors.
// Call this after creating the huma.API but before serving requests.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomainError(domainErr, logger)
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return fromStoreError(storeErr, logger)
			}
		}

		// huma reports malformed or schema-violating input as 400/422.
		if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
			return &APIError{
				status:  http.StatusBadRequest,
				Code:    string(domainerrors.CodeValidation),
				Message: message,
				Details: validationDetails(errs),
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("unhandled API error",
				"status", status,
				"message", message,
				"error", errors.Join(errs...),
			)
			message = "internal server error"
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

func fromDomainError(err *domainerrors.Error, logger *slog.Logger) *APIError {
	status := err.HTTPStatus()
	switch {
	case err.Code == domainerrors.CodeTransient:
		logger.Warn("transient store failure", "error", err)
	case status >= http.StatusInternalServerError:
		logger.Error("internal error", "code", err.Code, "error", err)
		return &APIError{
			status:  status,
			Code:    string(domainerrors.CodeInternal),
			Message: "internal server error",
		}
	}

	return &APIError{
		status:  status,
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
}

// fromStoreError covers store errors that reach the API without passing
// through a service.
func fromStoreError(err *store.Error, logger *slog.Logger) *APIError {
	switch err.HTTPCode() {
	case http.StatusNotFound:
		return &APIError{status: http.StatusNotFound, Code: string(domainerrors.CodeNotFound), Message: err.Message}
	case http.StatusConflict:
		return &APIError{status: http.StatusConflict, Code: string(domainerrors.CodeAlreadyExists), Message: err.Message}
	case http.StatusServiceUnavailable:
		logger.Warn("transient store failure", "error", err)
		return &APIError{status: http.StatusServiceUnavailable, Code: string(domainerrors.CodeTransient), Message: err.Message}
	}

	logger.Error("store error", "error", err)
	return &APIError{
		status:  http.StatusInternalServerError,
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}
}

// validationDetails maps huma's error locations to messages, with the
// "body." prefix dropped so body fields match service validation details.
func validationDetails(errs []error) any {
	details := make(map[string]string)
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		loc := strings.TrimPrefix(detail.Location, "body.")
		if loc == "" {
			loc = "body"
		}
		details[loc] = detail.Message
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// statusToCode maps HTTP status codes to domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	case http.StatusServiceUnavailable:
		return string(domainerrors.CodeTransient)
	default:
		return string(domainerrors.CodeInternal)
	}
}
