// Package calcerr defines the error taxonomy shared by every calculation
// package.
//
// All errors are local to a single calculation. None are retried: the
// computations are deterministic, so retrying with the same input changes
// nothing. Callers re-prompt for corrected input instead.
package calcerr

import (
	"errors"
	"fmt"
)

// Kind categorizes calculation errors.
type Kind string

const (
	// KindValidation indicates a missing or malformed required field.
	KindValidation Kind = "ValidationError"

	// KindDomain indicates a value outside the mathematically valid domain
	// (negative concentration, non-positive rate constant, negative base
	// raised to a fractional power, ...).
	KindDomain Kind = "DomainError"

	// KindConversionOutOfRange indicates a computed conversion >= 1.
	KindConversionOutOfRange Kind = "ConversionOutOfRange"

	// KindUnknownQuantity indicates a unit lookup for an unregistered
	// quantity or unit system.
	KindUnknownQuantity Kind = "UnknownQuantity"

	// KindInvalidStoichiometry indicates a non-positive coefficient or a
	// conversion outside [0,1) passed to the stoichiometry model.
	KindInvalidStoichiometry Kind = "InvalidStoichiometry"
)

// Kinds lists every error kind in a stable order.
var Kinds = []Kind{
	KindValidation,
	KindDomain,
	KindConversionOutOfRange,
	KindUnknownQuantity,
	KindInvalidStoichiometry,
}

// Error is a calculation error.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Field names the offending input, if any (e.g. "kinetics.order").
	Field string

	// Message is a human-readable description.
	Message string

	// Err is the underlying error (optional).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a ValidationError.
func Validation(field, format string, args ...any) *Error {
	return New(KindValidation, field, format, args...)
}

// Domain creates a DomainError.
func Domain(field, format string, args ...any) *Error {
	return New(KindDomain, field, format, args...)
}

// OutOfRange creates a ConversionOutOfRange error for conversion x.
func OutOfRange(x float64) *Error {
	return &Error{
		Kind:    KindConversionOutOfRange,
		Field:   "conversion",
		Message: fmt.Sprintf("computed conversion %.6g is not below 1; inputs imply complete or over-complete conversion", x),
	}
}

// UnknownQuantity creates an UnknownQuantity error.
func UnknownQuantity(format string, args ...any) *Error {
	return New(KindUnknownQuantity, "", format, args...)
}

// Stoichiometry creates an InvalidStoichiometry error.
func Stoichiometry(field, format string, args ...any) *Error {
	return New(KindInvalidStoichiometry, field, format, args...)
}

// KindOf returns the kind of err, or "" if err carries no calculation error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// Is reports whether err carries a calculation error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
