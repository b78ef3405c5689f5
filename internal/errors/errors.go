// Package errors defines stable error codes and a structured error type
// for capdash. Only transport/storage-class failures surface as errors;
// malformed records inside a payload are absorbed where they occur.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// PayloadMalformed indicates the raw payload could not be decoded at all
	PayloadMalformed ErrorCode = "PAYLOAD_MALFORMED"
	// PayloadNotFound indicates the payload source does not exist
	PayloadNotFound ErrorCode = "PAYLOAD_NOT_FOUND"
	// SnapshotNotFound indicates an archived snapshot id doesn't exist
	SnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	// StorageIO indicates a snapshot archive read/write failure
	StorageIO ErrorCode = "STORAGE_IO"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error represents a capdash error with a stable code and optional detail payload
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new Error without an underlying cause
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new Error wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails attaches details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf extracts the ErrorCode from err, or InternalError if err carries none
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
