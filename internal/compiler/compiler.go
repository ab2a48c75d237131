// Package compiler turns CUE request documents into typed calculation
// requests.
//
// Request documents declare named requests under a top-level "request"
// struct:
//
//	request: batch_first_order: {
//		reactor: "batch"
//		mode:    "conversion"
//		initial: a: 1.0
//		kinetics: {order: 1, rate_constant: 0.1}
//		geometry: time: 10
//	}
//
// Every request is unified with the embedded #Request schema, which closes
// the field set and enforces enumerations and numeric domains, then decoded
// into a model.Request. Semantic checks that depend on reactor type and mode
// (which inputs are required) are reported by Validate.
package compiler

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reactorcalc/internal/model"
)

//go:embed schema.cue
var schemaSource []byte

// RequestsPath is the top-level field that holds named requests.
const RequestsPath = "request"

// Compiler compiles request documents against the request schema.
//
// All values passed to a Compiler must be built with its Context; CUE
// refuses to unify values from different runtimes.
type Compiler struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a Compiler with a fresh CUE context and the embedded schema.
func New() (*Compiler, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile request schema: %w", formatCUEError(err))
	}
	def := v.LookupPath(cue.ParsePath("#Request"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Request: %w", err)
	}
	return &Compiler{ctx: ctx, schema: def}, nil
}

// Context returns the CUE context documents must be built with.
func (c *Compiler) Context() *cue.Context {
	return c.ctx
}

// Schema returns the #Request definition.
func (c *Compiler) Schema() cue.Value {
	return c.schema
}

// NamedRequest is a compiled request and the label it was declared under.
type NamedRequest struct {
	Name    string
	Request *model.Request
	Pos     token.Pos
}

// CompileRequest checks a single request value against the schema and
// decodes it.
func (c *Compiler) CompileRequest(v cue.Value) (*model.Request, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	u := c.schema.Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	// The schema has already pinned every field's kind, so the JSON form
	// decodes without loss.
	data, err := u.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var req model.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &CompileError{Field: "request", Message: err.Error(), Pos: v.Pos()}
	}
	return &req, nil
}

// CompileRequests compiles every request declared under RequestsPath in
// declaration order. If failFast is set it stops at the first error;
// otherwise it returns every request that compiled alongside all errors.
func (c *Compiler) CompileRequests(v cue.Value, failFast bool) ([]NamedRequest, []error) {
	reqs := v.LookupPath(cue.ParsePath(RequestsPath))
	if !reqs.Exists() {
		return nil, []error{&CompileError{Field: RequestsPath, Message: "no requests declared", Pos: v.Pos()}}
	}

	iter, err := reqs.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		out  []NamedRequest
		errs []error
	)
	for iter.Next() {
		name := iter.Selector().Unquoted()
		req, err := c.CompileRequest(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", RequestsPath, name, err))
			if failFast {
				return out, errs
			}
			continue
		}
		out = append(out, NamedRequest{Name: name, Request: req, Pos: iter.Value().Pos()})
	}

	if len(out) == 0 && len(errs) == 0 {
		errs = append(errs, &CompileError{Field: RequestsPath, Message: "no requests declared", Pos: reqs.Pos()})
	}
	return out, errs
}

// CompileString compiles a request document held in memory.
func (c *Compiler) CompileString(filename, src string) ([]NamedRequest, []error) {
	v := c.ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}
	return c.CompileRequests(v, false)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "cue"
	if path := first.Path(); len(path) > 0 {
		field = strings.Join(path, ".")
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   field,
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return &CompileError{Field: field, Message: first.Error()}
}
