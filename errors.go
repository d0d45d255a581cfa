// Package striate structured error types for kernel dispatch
package striate

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Invalid argument errors
	ErrTypeInvalidArg
	// Operand shapes do not fit the operation's axis
	ErrTypeShapeMismatch
	// Reduction extent above the enforced capacity
	ErrTypeCapacityExceeded
	// Kernel execution faults
	ErrTypeExecution
	// Device errors
	ErrTypeDevice
)

// Error represents a structured error with context.
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("striate %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("striate %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeShapeMismatch:
		return "ShapeMismatch"
	case ErrTypeCapacityExceeded:
		return "CapacityExceeded"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &Error{Type: ErrTypeMemory, Op: op, Message: message, Err: err}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &Error{Type: ErrTypeInvalidArg, Op: op, Message: message}
}

// NewShapeError reports operands whose dimensions do not match the
// operation's axis. Nothing has been dispatched when it is returned.
func NewShapeError(op string, format string, args ...interface{}) error {
	return &Error{Type: ErrTypeShapeMismatch, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NewCapacityError reports a reduction extent above MaxReductionExtent.
func NewCapacityError(op string, extent, limit int) error {
	return &Error{
		Type:    ErrTypeCapacityExceeded,
		Op:      op,
		Message: fmt.Sprintf("reduction extent %d exceeds limit %d", extent, limit),
	}
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return &Error{Type: ErrTypeExecution, Op: op, Message: message, Err: err}
}

// Common pre-defined errors

var (
	// ErrInvalidSize indicates invalid size parameter
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)

	// ErrContextDestroyed is returned by dispatches on a destroyed context.
	ErrContextDestroyed = &Error{Type: ErrTypeDevice, Op: "Context", Message: "context destroyed"}
)

func errorType(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

func isType(err error, t ErrorType) bool {
	got, ok := errorType(err)
	return ok && got == t
}

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool { return isType(err, ErrTypeMemory) }

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool { return isType(err, ErrTypeInvalidArg) }

// IsShapeMismatch checks if an error is a shape mismatch.
func IsShapeMismatch(err error) bool { return isType(err, ErrTypeShapeMismatch) }

// IsCapacityExceeded checks if an error is a capacity violation.
func IsCapacityExceeded(err error) bool { return isType(err, ErrTypeCapacityExceeded) }

// IsExecutionError checks if an error is a kernel execution fault.
func IsExecutionError(err error) bool { return isType(err, ErrTypeExecution) }

// IsDeviceError checks if an error is a device error
func IsDeviceError(err error) bool { return isType(err, ErrTypeDevice) }
