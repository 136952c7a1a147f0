package dto

import (
	"errors"
	"net/http"

	"github.com/cafe/backend/internal/domain/shared"
)

// Transport-level error codes. Domain errors keep their own codes.
const (
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeValidation  = "VALIDATION_FAILED"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeTooLarge    = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error categories to HTTP status codes
var ErrorCodeHTTPStatus = map[shared.ErrorCategory]int{
	shared.CategoryValidation:   http.StatusBadRequest,
	shared.CategoryNotFound:     http.StatusNotFound,
	shared.CategoryBusinessRule: http.StatusUnprocessableEntity,
	shared.CategoryConflict:     http.StatusConflict,
	shared.CategoryIntegrity:    http.StatusInternalServerError,
}

// GetHTTPStatus returns the status for a category; unknown categories are 500.
func GetHTTPStatus(category shared.ErrorCategory) int {
	if status, ok := ErrorCodeHTTPStatus[category]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError renders err as an HTTP status and envelope. Only domain errors
// expose their message; integrity failures and unknown errors are masked.
func FromError(err error, requestID string) (int, Response) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, NewErrorResponse(ErrCodeInternal, "An unexpected error occurred", requestID)
	}

	status := GetHTTPStatus(domainErr.Category)
	if status == http.StatusInternalServerError {
		return status, NewErrorResponse(domainErr.Code, domainErr.Message, requestID)
	}

	resp := NewErrorResponse(domainErr.Code, domainErr.Message, requestID)
	resp.Error.Field = domainErr.Field
	resp.Error.Details = domainErr.Details
	return status, resp
}
