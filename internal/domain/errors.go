package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeAttendanceRecorded   = "ATTENDANCE_RECORDED"
	ErrCodeDuplicateEvent       = "DUPLICATE_EVENT"
	ErrCodeNoAttendance         = "NO_ATTENDANCE"
)

func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s with ID %s not found", entity, id),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidAmountError(amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %d", amount),
	}
}

func NewInvalidStateError(message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidState,
		Message: message,
	}
}

func NewAttendanceRecordedError(bookingID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeAttendanceRecorded,
		Message: fmt.Sprintf("booking %s already has attendance recorded", bookingID),
	}
}

func NewDuplicateEventError(eventID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateEvent,
		Message: fmt.Sprintf("gateway event %s already processed", eventID),
	}
}

func NewNoAttendanceError() *DomainError {
	return &DomainError{
		Code:    ErrCodeNoAttendance,
		Message: "no attendance to update: mark at least one customer as present",
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrCodeNotFound)
}
