// Package errs provides the error type shared by every dbinfo package.
//
// Connection drivers translate native errors (pgconn SQLSTATEs, MySQL error
// numbers, SQLite result codes, SQL Server error numbers) into *errs.Error,
// and the inspector adds context with fmt.Errorf("...: %w"). Callers classify
// failures through the Is* predicates and never import a driver package.
//
//	if errs.IsUnsupportedVendor(err) {
//	    return fmt.Errorf("pick one of: %s", strings.Join(schema.Drivers(), ", "))
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind classifies an error independently of the backend that raised it.
type ErrKind int

const (
	ErrKindUnknown           ErrKind = iota
	ErrKindNotFound                  // no rows, no object, no bucket
	ErrKindConnectionFailed          // cannot reach or authenticate to the backend
	ErrKindTimeout                   // context deadline / cancellation
	ErrKindQueryFailed               // SQL execution error or malformed catalog row
	ErrKindInvalidInput              // bad arguments from the caller
	ErrKindPermissionDenied          // access denied
	ErrKindUnsupportedVendor         // no vendor adapter for the driver name
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindUnsupportedVendor:
		return "unsupported_vendor"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by dbinfo packages.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, kept for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is / errors.As walk into the driver error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error without a cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error around an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a missing row, object or bucket.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a failed catalog query or a catalog
// row that could not be normalized.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsUnsupportedVendor reports whether err came from selecting a vendor
// adapter for a driver name nobody registered.
func IsUnsupportedVendor(err error) bool {
	return KindOf(err) == ErrKindUnsupportedVendor
}

// KindOf extracts the ErrKind of the first *Error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
