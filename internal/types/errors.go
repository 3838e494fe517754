package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for graphmap errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_NOT_FOUND         ErrorCode = "CONFIG_NOT_FOUND"
)

// Input error codes
const (
	INVALID_ARGUMENT  ErrorCode = "INVALID_ARGUMENT"
	SEED_PARSE_FAILED ErrorCode = "SEED_PARSE_FAILED"
)

// GraphmapError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type GraphmapError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *GraphmapError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *GraphmapError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a GraphmapError carrying the same Code.
// Package-level sentinels built with NewError therefore match any error
// of the same code through errors.Is.
func (e *GraphmapError) Is(target error) bool {
	var other *GraphmapError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// NewError creates a new non-retryable GraphmapError with the given code and message.
func NewError(code ErrorCode, message string) *GraphmapError {
	return &GraphmapError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable GraphmapError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *GraphmapError {
	return &GraphmapError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable GraphmapError that wraps an existing error.
func WrapError(code ErrorCode, message string, cause error) *GraphmapError {
	return &GraphmapError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapRetryableError is WrapError for transient failures.
func WrapRetryableError(code ErrorCode, message string, cause error) *GraphmapError {
	return &GraphmapError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// CodeOf returns the code of the outermost GraphmapError in err's chain,
// or the empty code when there is none.
func CodeOf(err error) ErrorCode {
	var gerr *GraphmapError
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return ""
}

// IsRetryable reports whether any GraphmapError in err's chain is marked retryable.
func IsRetryable(err error) bool {
	for err != nil {
		var gerr *GraphmapError
		if !errors.As(err, &gerr) {
			return false
		}
		if gerr.Retryable {
			return true
		}
		err = gerr.Cause
	}
	return false
}
