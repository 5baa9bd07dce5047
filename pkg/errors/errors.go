// Package errors defines common error types for the generator.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the generator.
const (
	CodeUnknown         = "UNKNOWN_ERROR"
	CodeInputSyntax     = "INPUT_SYNTAX_ERROR"
	CodeInputSemantics  = "INPUT_SEMANTICS_ERROR"
	CodeParamInfeasible = "PARAM_INFEASIBLE"
	CodeOutOfMemory     = "OUT_OF_MEMORY"
	CodeStagnation      = "STAGNATION"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeStorageError    = "STORAGE_ERROR"
	CodeConfigError     = "CONFIG_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrInputSyntax     = New(CodeInputSyntax, "input format violated")
	ErrInputSemantics  = New(CodeInputSemantics, "input value out of range")
	ErrParamInfeasible = New(CodeParamInfeasible, "requested parameters are infeasible")
	ErrOutOfMemory     = New(CodeOutOfMemory, "not enough memory for the requested array")
	ErrStagnation      = New(CodeStagnation, "score stopped improving")
	ErrDatabaseError   = New(CodeDatabaseError, "database error")
	ErrStorageError    = New(CodeStorageError, "storage error")
	ErrConfigError     = New(CodeConfigError, "configuration error")
)

// IsInputError checks if the error is a syntactic or semantic input error.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInputSyntax) || errors.Is(err, ErrInputSemantics)
}

// IsInfeasible checks if the error reports infeasible parameters.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrParamInfeasible)
}

// IsOutOfMemory checks if the error is a memory exhaustion error.
func IsOutOfMemory(err error) bool {
	return errors.Is(err, ErrOutOfMemory)
}

// IsStagnation checks if the error reports a stagnated run.
func IsStagnation(err error) bool {
	return errors.Is(err, ErrStagnation)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
