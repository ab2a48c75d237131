// Package reactor implements the sizing models of the four idealized
// reactors: batch, CSTR, PFR and packed bed (PBR).
//
// Every model shares one contract, Compute(mode, params), and differs only
// in what "residence" means and which design equation governs it. Batch,
// PFR and PBR use the integrated plug-flow relation from package kinetics;
// the CSTR uses the algebraic mixed-flow balance. The two are not
// interchangeable for n ≠ 1.
package reactor

import (
	"fmt"
	"math"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/kinetics"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/stoich"
	"github.com/roach88/reactorcalc/internal/thermal"
	"github.com/roach88/reactorcalc/internal/units"
)

// Geometry holds the reactor inputs in SI units. Fields a reactor does not
// use are ignored.
type Geometry struct {
	Time             float64 // s
	Volume           float64 // m³
	FlowRate         float64 // m³/s
	Length           float64 // m
	Velocity         float64 // m/s
	Porosity         float64
	ParticleDiameter float64 // m
}

// Params are the typed, SI inputs of a calculation.
type Params struct {
	Reaction stoich.Reaction
	Kinetics kinetics.Params
	Geometry Geometry
	Thermal  thermal.State

	// Target is the conversion to size for in size mode.
	Target float64
}

// Model is a reactor sizing model.
type Model interface {
	// Type returns the reactor type the model implements.
	Type() model.Reactor

	// Compute runs the calculation selected by mode.
	Compute(mode model.Mode, p Params) (model.Result, error)
}

// For returns the model of reactor type t.
func For(t model.Reactor) (Model, error) {
	switch t {
	case model.Batch:
		return Batch{}, nil
	case model.CSTR:
		return CSTR{}, nil
	case model.PFR:
		return PFR{}, nil
	case model.PBR:
		return PBR{}, nil
	}
	return nil, calcerr.Validation("reactor", "unknown reactor type %q", t)
}

// residenceModel is the part each reactor supplies; compute dispatches the
// shared modes around it.
type residenceModel interface {
	Model

	// residence returns the residence measure in seconds.
	residence(g Geometry) (float64, error)

	// conversion returns the conversion reached after tau.
	conversion(tau, k, n, cref float64) (float64, error)

	// size returns the sized quantity and the residence that reaches x.
	size(x, k, n, cref float64, g Geometry) (units.Quantity, float64, float64, error)
}

func compute(m residenceModel, mode model.Mode, p Params) (model.Result, error) {
	switch mode {
	case model.ModeConversion:
		res, err := conversion(m, p)
		if err != nil {
			return nil, err
		}
		return res, nil
	case model.ModeRate:
		return rate(p)
	case model.ModeTemperature:
		return temperature(m, p)
	case model.ModeSize:
		return size(m, p)
	}
	return nil, calcerr.Validation("mode", "unknown mode %q", mode)
}

// kineticInputs resolves the limiting reactant and the effective rate
// constant shared by every mode.
func kineticInputs(p Params) (stoich.Limiting, float64, error) {
	lim, err := stoich.LimitingReactant(p.Reaction)
	if err != nil {
		return stoich.Limiting{}, 0, err
	}
	if err := p.Kinetics.Validate(); err != nil {
		return stoich.Limiting{}, 0, err
	}
	k, err := p.Kinetics.K()
	if err != nil {
		return stoich.Limiting{}, 0, err
	}
	return lim, k, nil
}

func conversion(m residenceModel, p Params) (model.ConversionResult, error) {
	lim, k, err := kineticInputs(p)
	if err != nil {
		return model.ConversionResult{}, err
	}
	tau, err := m.residence(p.Geometry)
	if err != nil {
		return model.ConversionResult{}, err
	}
	x, err := m.conversion(tau, k, p.Kinetics.Order, lim.Initial)
	if err != nil {
		return model.ConversionResult{}, fmt.Errorf("%s: %w", m.Type(), err)
	}
	if x >= 1 {
		return model.ConversionResult{}, calcerr.OutOfRange(x)
	}

	final, err := stoich.FinalAmounts(p.Reaction, x)
	if err != nil {
		return model.ConversionResult{}, err
	}
	return model.ConversionResult{
		Conversion: x,
		Residence:  tau,
		Reference:  lim.Initial,
		Limiting:   lim.Species,
		Final:      final,
	}, nil
}

func rate(p Params) (model.Result, error) {
	lim, k, err := kineticInputs(p)
	if err != nil {
		return nil, err
	}
	r, err := kinetics.Rate(lim.Initial, k, p.Kinetics.Order)
	if err != nil {
		return nil, err
	}
	return model.RateResult{
		Rate:          r,
		RateConstant:  k,
		Order:         p.Kinetics.Order,
		Concentration: lim.Initial,
		Arrhenius:     p.Kinetics.Arrhenius != nil,
	}, nil
}

// temperature runs the lumped heat balance over the reactor's residence,
// using the extent lim.Value·X of the limiting reactant.
func temperature(m residenceModel, p Params) (model.Result, error) {
	conv, err := conversion(m, p)
	if err != nil {
		return nil, err
	}
	lim, err := stoich.LimitingReactant(p.Reaction)
	if err != nil {
		return nil, err
	}
	final, err := thermal.TemperatureAfter(p.Thermal, lim.Value*conv.Conversion, conv.Residence)
	if err != nil {
		return nil, err
	}
	return model.TemperatureResult{
		Initial:    p.Thermal.InitialTemperature,
		Final:      final,
		Conversion: conv.Conversion,
		Residence:  conv.Residence,
	}, nil
}

func size(m residenceModel, p Params) (model.Result, error) {
	lim, k, err := kineticInputs(p)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(p.Target) || p.Target < 0 || p.Target >= 1 {
		return nil, calcerr.Domain("target_conversion", "must lie in [0, 1), got %g", p.Target)
	}
	q, required, tau, err := m.size(p.Target, k, p.Kinetics.Order, lim.Initial, p.Geometry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Type(), err)
	}
	return model.SizeResult{
		Parameter: q,
		Required:  required,
		Residence: tau,
		Target:    p.Target,
	}, nil
}

func positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return calcerr.Domain(field, "must be positive, got %g", v)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return calcerr.Domain(field, "must be non-negative, got %g", v)
	}
	return nil
}
