// Package result defines the uniform outcome returned by every elucidation operation.
//
// A Result is a value: it is built by one of the named constructors and never
// changes afterwards. Its fields are unexported so a skip reason, an error
// message and a captured cause can never be populated together.
package result

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// Status is how an operation concluded.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusSkipped Status = "SKIPPED"
	StatusError   Status = "ERROR"
)

// ErrNilCause stands in for the cause when FromError is handed a nil error.
var ErrNilCause = errors.New("error result created without a cause")

// Result is the outcome of a single client or recorder operation.
//
// message holds the skip reason for StatusSkipped and the error message for
// StatusError results built from text. cause is only set by FromError.
type Result struct {
	status  Status
	message string
	cause   error
}

// OK returns a successful result.
func OK() Result {
	return Result{status: StatusSuccess}
}

// FromSkipMessage returns a skipped result carrying the reason.
func FromSkipMessage(reason string) Result {
	return Result{status: StatusSkipped, message: reason}
}

// FromErrorMessage returns a failed result describing a protocol rejection or invalid input.
func FromErrorMessage(message string) Result {
	return Result{status: StatusError, message: message}
}

// FromError returns a failed result that preserves the fault that caused it.
func FromError(err error) Result {
	if err == nil {
		err = ErrNilCause
	}
	return Result{status: StatusError, cause: err}
}

// FromPanic converts a recovered panic value into a failed result. Error values
// are kept as they were raised.
func FromPanic(p any) Result {
	if err, ok := p.(error); ok {
		return FromError(err)
	}
	return FromError(fmt.Errorf("panic: %v", p))
}

// Status reports how the operation concluded. The zero Result reports StatusSuccess.
func (r Result) Status() Status {
	if r.status == "" {
		return StatusSuccess
	}
	return r.status
}

// HasSkipMessage reports whether the result is a skip.
func (r Result) HasSkipMessage() bool { return r.status == StatusSkipped }

// HasErrorMessage reports whether the result is a failure described by text.
func (r Result) HasErrorMessage() bool { return r.status == StatusError && r.cause == nil }

// HasCause reports whether the result is a failure caused by a captured error.
func (r Result) HasCause() bool { return r.cause != nil }

// SkipMessage returns the skip reason, or "" when the result is not a skip.
func (r Result) SkipMessage() string {
	if !r.HasSkipMessage() {
		return ""
	}
	return r.message
}

// ErrorMessage returns the error text, or "" when the result does not carry one.
func (r Result) ErrorMessage() string {
	if !r.HasErrorMessage() {
		return ""
	}
	return r.message
}

// Cause returns the captured error exactly as it was handed to FromError.
func (r Result) Cause() error { return r.cause }

// Err converts a failed result into an error. It returns nil for success and skips.
func (r Result) Err() error {
	if r.status != StatusError {
		return nil
	}
	return &Error{Message: r.message, Cause: r.cause}
}

// Equal reports whether both results have the same status, message and cause.
// Causes are compared deeply so two equivalent errors from repeated calls match.
func (r Result) Equal(other Result) bool {
	if r.Status() != other.Status() || r.message != other.message {
		return false
	}
	return reflect.DeepEqual(r.cause, other.cause)
}

func (r Result) String() string {
	switch {
	case r.HasSkipMessage():
		return fmt.Sprintf("%s: %s", StatusSkipped, r.message)
	case r.HasCause():
		return fmt.Sprintf("%s: %v", StatusError, r.cause)
	case r.HasErrorMessage():
		return fmt.Sprintf("%s: %s", StatusError, r.message)
	default:
		return string(r.Status())
	}
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("status", string(r.Status()))}
	switch {
	case r.HasSkipMessage():
		attrs = append(attrs, slog.String("skip_reason", r.message))
	case r.HasCause():
		attrs = append(attrs, slog.String("error", r.cause.Error()))
	case r.HasErrorMessage():
		attrs = append(attrs, slog.String("error_message", r.message))
	}
	return slog.GroupValue(attrs...)
}

// Error is the error form of a failed Result.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
