// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid windows, spans, multipliers and policies
//   - Series shape errors (200-299): Mismatched column lengths, unordered timestamps
//   - Data/Resource errors (300-399): Data source lookups and queries
//   - Indicator errors (400-499): Registry lookups and calculation failures
//   - Output errors (500-599): Writing indicator tables
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeInvalidPeriod, "window must be positive, got %d", window)
//
//	if errors.HasCode(err, errors.ErrCodeInputShape) { ... }
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error chain.
// Shape errors report their own code. Anything else is ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var shapeErr *InputShapeError
	if errors.As(err, &shapeErr) {
		return ErrCodeInputShape
	}

	var orderErr *OutOfOrderError
	if errors.As(err, &orderErr) {
		return ErrCodeOutOfOrder
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InputShapeError is returned when columns that must be index-aligned
// (high/low/close for KD, for example) have different lengths.
type InputShapeError struct {
	Column   string // name of the offending column
	Expected int    // length of the reference column
	Actual   int    // length of the offending column
}

// NewInputShapeError creates a new InputShapeError.
func NewInputShapeError(column string, expected, actual int) *InputShapeError {
	return &InputShapeError{
		Column:   column,
		Expected: expected,
		Actual:   actual,
	}
}

// Error implements the error interface.
func (e *InputShapeError) Error() string {
	return fmt.Sprintf("[%d] column %s has length %d, expected %d", ErrCodeInputShape, e.Column, e.Actual, e.Expected)
}

// IsInputShapeError checks if an error is an InputShapeError.
func IsInputShapeError(err error) bool {
	var shapeErr *InputShapeError

	return errors.As(err, &shapeErr)
}

// OutOfOrderError is returned when a series' timestamps are not strictly increasing.
type OutOfOrderError struct {
	Index    int
	Previous time.Time
	Current  time.Time
}

// NewOutOfOrderError creates a new OutOfOrderError for the bar at index.
func NewOutOfOrderError(index int, previous, current time.Time) *OutOfOrderError {
	return &OutOfOrderError{
		Index:    index,
		Previous: previous,
		Current:  current,
	}
}

// Error implements the error interface.
func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("[%d] bar %d at %s is not after %s",
		ErrCodeOutOfOrder, e.Index, e.Current.Format(time.RFC3339), e.Previous.Format(time.RFC3339))
}

// IsOutOfOrderError checks if an error is an OutOfOrderError.
func IsOutOfOrderError(err error) bool {
	var orderErr *OutOfOrderError

	return errors.As(err, &orderErr)
}
