package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/DanielPopoola/classbook/internal/domain"
)

// ErrorCategory represents the nature of an error for logging purposes
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines error category for logging
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput, ErrCodeNotFound, ErrCodeUnauthorized, ErrCodeForbidden:
			return CategoryClientError
		case ErrCodeConflict:
			return CategoryBusinessRule
		case ErrCodeTimeout, ErrCodeGateway:
			return CategoryTransient
		default:
			return CategoryInfrastructure
		}
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeNotFound,
			domain.ErrCodeMissingRequiredField,
			domain.ErrCodeInvalidAmount,
			domain.ErrCodeNoAttendance:
			return CategoryClientError
		default:
			return CategoryBusinessRule
		}
	}

	return CategoryInfrastructure
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeInvalidAmount,
			domain.ErrCodeMissingRequiredField,
			domain.ErrCodeNoAttendance:
			return http.StatusBadRequest
		case domain.ErrCodeNotFound:
			return http.StatusNotFound
		case domain.ErrCodeInvalidState,
			domain.ErrCodeAttendanceRecorded,
			domain.ErrCodeDuplicateEvent:
			return http.StatusConflict
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		// A wrapped domain error is more specific than the generic service code.
		var domainErr *domain.DomainError
		if svcErr.Code != ErrCodeInternal && errors.As(svcErr.Err, &domainErr) {
			return domainErr.Code
		}
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}

	return ErrCodeInternal
}
