// Package errors provides consistent error handling for the substrate deployer.
//
// This package wraps the standard errors package and provides:
// - Stack traces for debugging
// - Context propagation
// - Typed errors for the juju CLI failure modes
// - Error categorization (transient vs permanent)
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Error types for categorization
const (
	// ErrorTypeTransient indicates the error may resolve on retry
	ErrorTypeTransient = "Transient"
	// ErrorTypePermanent indicates the error requires intervention
	ErrorTypePermanent = "Permanent"
	// ErrorTypeValidation indicates invalid input
	ErrorTypeValidation = "Validation"
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound = "NotFound"
	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal = "Internal"
	// ErrorTypeExternalCommand indicates an external tool exited non-zero
	ErrorTypeExternalCommand = "ExternalCommand"
	// ErrorTypeTimeout indicates a bounded wait was exceeded
	ErrorTypeTimeout = "Timeout"
	// ErrorTypeMalformedOutput indicates structured output could not be decoded
	ErrorTypeMalformedOutput = "MalformedOutput"
)

// SubstrateError is the base error type with context and stack trace.
type SubstrateError struct {
	// Cause is the underlying error
	Cause error
	// Message is the human-readable error message
	Message string
	// Type categorizes the error
	Type string
	// Context contains key-value pairs for debugging
	Context map[string]string
	// Stack is the call stack at error creation
	Stack []uintptr
	// Retryable indicates if the operation may be retried by the caller
	Retryable bool
}

// Error implements the error interface.
func (e *SubstrateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *SubstrateError) Unwrap() error {
	return e.Cause
}

// StackTrace returns a formatted stack trace.
func (e *SubstrateError) StackTrace() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(e.Stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			sb.WriteString(fmt.Sprintf("  %s\n    %s:%d\n", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// WithContext adds context to the error.
func (e *SubstrateError) WithContext(key, value string) *SubstrateError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func captureStack(skip int) []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	return pcs[:n]
}

// Newf creates a new SubstrateError with a formatted message.
func Newf(format string, args ...interface{}) *SubstrateError {
	return &SubstrateError{
		Message: fmt.Sprintf(format, args...),
		Type:    ErrorTypeInternal,
		Stack:   captureStack(1),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *SubstrateError {
	if err == nil {
		return nil
	}
	return &SubstrateError{
		Cause:   err,
		Message: message,
		Type:    wrappedType(err),
		Stack:   captureStack(1),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *SubstrateError {
	if err == nil {
		return nil
	}
	return &SubstrateError{
		Cause:   err,
		Message: fmt.Sprintf(format, args...),
		Type:    wrappedType(err),
		Stack:   captureStack(1),
	}
}

// Transient creates a transient (retryable) error.
func Transient(err error, message string) *SubstrateError {
	e := Wrap(err, message)
	if e == nil {
		return nil
	}
	e.Type = ErrorTypeTransient
	e.Retryable = true
	return e
}

// Permanent creates a permanent (non-retryable) error.
func Permanent(err error, message string) *SubstrateError {
	e := Wrap(err, message)
	if e == nil {
		return nil
	}
	e.Type = ErrorTypePermanent
	e.Retryable = false
	return e
}

// Validation creates a validation error.
func Validation(message string) *SubstrateError {
	return &SubstrateError{
		Message:   message,
		Type:      ErrorTypeValidation,
		Retryable: false,
		Stack:     captureStack(1),
	}
}

// NotFound creates a not-found error.
func NotFound(resource, name string) *SubstrateError {
	return &SubstrateError{
		Message:   fmt.Sprintf("%s %q not found", resource, name),
		Type:      ErrorTypeNotFound,
		Retryable: false,
		Stack:     captureStack(1),
		Context:   map[string]string{"resource": resource, "name": name},
	}
}

// typeOf keeps the category of typed errors when they get wrapped.
func typeOf(err error) string {
	var se *SubstrateError
	if errors.As(err, &se) {
		return se.Type
	}
	switch {
	case IsExternalCommand(err):
		return ErrorTypeExternalCommand
	case IsTimeout(err):
		return ErrorTypeTimeout
	case IsMalformedOutput(err):
		return ErrorTypeMalformedOutput
	}
	return ""
}

func wrappedType(err error) string {
	if t := typeOf(err); t != "" {
		return t
	}
	return ErrorTypeInternal
}

// IsRetryable checks if an error should be retried.
func IsRetryable(err error) bool {
	var se *SubstrateError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// IsType checks if an error is of a specific type.
func IsType(err error, errType string) bool {
	if err == nil {
		return false
	}
	return typeOf(err) == errType
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}
