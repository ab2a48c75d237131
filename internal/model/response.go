package model

import (
	"errors"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/stoich"
	"github.com/roach88/reactorcalc/internal/thermal"
	"github.com/roach88/reactorcalc/internal/units"
)

// KindInternal labels failures that are not calculation errors, such as a
// canceled batch.
const KindInternal calcerr.Kind = "InternalError"

// Response is the unit-resolved outcome of a successful calculation.
// Values are expressed in System; Units carries the symbol of every
// unit-bearing value.
type Response struct {
	Mode    Mode               `json:"mode"`
	Reactor Reactor            `json:"reactor"`
	System  units.System       `json:"unit_system"`
	Values  map[string]float64 `json:"values"`
	Units   map[string]string  `json:"units"`
	Labels  map[string]string  `json:"labels"`

	// Limiting names the limiting reactant when the calculation used one.
	Limiting stoich.Species `json:"limiting,omitempty"`

	// Profile holds packed-bed samples, positions and temperatures in
	// System units.
	Profile []thermal.Sample `json:"profile,omitempty"`

	// Keys lists the value names in display order.
	Keys []string `json:"-"`
}

// Failure describes a failed calculation.
type Failure struct {
	Kind    calcerr.Kind `json:"kind"`
	Field   string       `json:"field,omitempty"`
	Message string       `json:"message"`
}

// Envelope is the wire form of a calculation outcome: exactly one of the
// embedded Response and Error is set.
type Envelope struct {
	ID string `json:"id"`
	*Response
	Error *Failure `json:"error,omitempty"`
}

// OK reports whether the envelope carries a successful response.
func (e *Envelope) OK() bool {
	return e.Error == nil && e.Response != nil
}

// FailureOf converts err into a Failure. Calculation errors keep their kind
// and field; anything else is reported as an internal error.
func FailureOf(err error) *Failure {
	var ce *calcerr.Error
	if errors.As(err, &ce) {
		msg := ce.Message
		if ce.Err != nil {
			msg += ": " + ce.Err.Error()
		}
		return &Failure{Kind: ce.Kind, Field: ce.Field, Message: msg}
	}
	return &Failure{Kind: KindInternal, Message: err.Error()}
}

// CanonicalMap converts e into plain maps and slices for MarshalCanonical.
func (e *Envelope) CanonicalMap() map[string]any {
	out := map[string]any{"id": e.ID}
	if e.Error != nil {
		fail := map[string]any{
			"kind":    string(e.Error.Kind),
			"message": e.Error.Message,
		}
		if e.Error.Field != "" {
			fail["field"] = e.Error.Field
		}
		out["error"] = fail
		return out
	}
	if r := e.Response; r != nil {
		out["mode"] = string(r.Mode)
		out["reactor"] = string(r.Reactor)
		out["unit_system"] = string(r.System)

		values := make(map[string]any, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}
		out["values"] = values

		syms := make(map[string]any, len(r.Units))
		for k, v := range r.Units {
			syms[k] = v
		}
		out["units"] = syms

		labels := make(map[string]any, len(r.Labels))
		for k, v := range r.Labels {
			labels[k] = v
		}
		out["labels"] = labels

		if r.Limiting != "" {
			out["limiting"] = string(r.Limiting)
		}
		if len(r.Profile) > 0 {
			profile := make([]any, len(r.Profile))
			for i, s := range r.Profile {
				profile[i] = map[string]any{"position": s.Position, "temperature": s.Temperature}
			}
			out["profile"] = profile
		}
	}
	return out
}
