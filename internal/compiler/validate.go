package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/model"
)

// Validation error codes (E200-E299)
const (
	// General validation errors (E200)
	ErrInvalidRequest = "E200" // uncategorized request error

	// Enumerations (E201-E204)
	ErrUnknownReactor = "E201" // reactor type not registered
	ErrUnknownMode    = "E202" // calculation mode not registered
	ErrUnknownUnits   = "E203" // unit system not registered
	ErrUnknownScheme  = "E204" // reaction scheme not registered

	// Inputs (E205-E209)
	ErrMissingField   = "E205" // input required by reactor and mode is absent
	ErrSchemaMismatch = "E206" // document violates the #Request schema
	ErrStoichiometry  = "E207" // invalid stoichiometric coefficient or conversion
	ErrDomain         = "E208" // numeric input outside its physical domain
	ErrUnknownQty     = "E209" // quantity has no registered unit
)

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks that req carries every input its reactor type and mode
// require. Returns all errors found (does not fail-fast).
func Validate(req *model.Request) []ValidationError {
	if req == nil {
		return []ValidationError{{Field: "request", Message: "request is required", Code: ErrInvalidRequest}}
	}

	var errs []ValidationError
	for _, e := range req.Validate() {
		errs = append(errs, FromCalcError(e))
	}
	return errs
}

// FromCalcError maps a calculation error to a coded validation error.
func FromCalcError(err *calcerr.Error) ValidationError {
	return ValidationError{
		Field:   err.Field,
		Message: err.Message,
		Code:    CodeFor(err.Kind, err.Field),
	}
}

// FromCompileError maps a schema violation to a coded validation error.
func FromCompileError(err *CompileError) ValidationError {
	v := ValidationError{
		Field:   err.Field,
		Message: err.Message,
		Code:    ErrSchemaMismatch,
	}
	if err.Pos.IsValid() {
		v.Line = err.Pos.Line()
	}
	return v
}

// CodeFor returns the validation code of an error kind reported for field.
func CodeFor(kind calcerr.Kind, field string) string {
	switch kind {
	case calcerr.KindValidation:
		switch field {
		case "reactor":
			return ErrUnknownReactor
		case "mode":
			return ErrUnknownMode
		case "units":
			return ErrUnknownUnits
		case "scheme":
			return ErrUnknownScheme
		}
		if strings.Contains(field, ".") || field == "target_conversion" {
			return ErrMissingField
		}
	case calcerr.KindInvalidStoichiometry:
		return ErrStoichiometry
	case calcerr.KindDomain, calcerr.KindConversionOutOfRange:
		return ErrDomain
	case calcerr.KindUnknownQuantity:
		return ErrUnknownQty
	}
	return ErrInvalidRequest
}
