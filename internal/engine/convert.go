package engine

import (
	"fmt"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/kinetics"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/reactor"
	"github.com/roach88/reactorcalc/internal/stoich"
	"github.com/roach88/reactorcalc/internal/thermal"
	"github.com/roach88/reactorcalc/internal/units"
)

// ConvertRequest returns a copy of req with every unit-bearing field
// re-expressed in system to. req itself is not modified. Rate-constant
// fields are converted at the request's reaction order, so converting a
// request that carries a rate constant but no order fails.
func (e *Engine) ConvertRequest(req *model.Request, to units.System) (*model.Request, error) {
	from, err := units.ParseSystem(req.Units)
	if err != nil {
		return nil, err
	}

	out := req.Clone()
	out.Units = string(to)
	if from == to {
		return out, nil
	}

	for _, f := range out.UnitFields() {
		var order []float64
		if f.Quantity == units.RateConstant {
			if out.Kinetics.Order == nil {
				return nil, calcerr.Validation("kinetics.order", "is required to convert %s", f.Path)
			}
			order = append(order, *out.Kinetics.Order)
		}
		v, err := e.registry.Convert(*f.Value, f.Quantity, from, to, order...)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", f.Path, err)
		}
		*f.Value = v
	}
	return out, nil
}

// buildParams turns an SI request into typed reactor parameters. Fields the
// selected mode does not use are left zero.
func buildParams(req *model.Request) (reactor.Params, error) {
	var p reactor.Params

	kind, err := stoich.ParseKind(req.Scheme)
	if err != nil {
		return p, err
	}
	scheme, err := stoich.NewScheme(kind, req.Stoichiometry.Coefficients())
	if err != nil {
		return p, err
	}
	p.Reaction = stoich.Reaction{Scheme: scheme, Initial: req.Initial.Amounts()}

	k := req.Kinetics
	p.Kinetics = kinetics.Params{
		Order:        deref(k.Order),
		RateConstant: deref(k.RateConstant),
	}
	if a := k.Arrhenius; a != nil {
		p.Kinetics.Arrhenius = &kinetics.Arrhenius{
			ActivationEnergy: deref(a.ActivationEnergy),
			PreExponential:   deref(a.PreExponential),
			Temperature:      deref(a.Temperature),
		}
	}

	g := req.Geometry
	p.Geometry = reactor.Geometry{
		Time:             deref(g.Time),
		Volume:           deref(g.Volume),
		FlowRate:         deref(g.FlowRate),
		Length:           deref(g.Length),
		Velocity:         deref(g.Velocity),
		Porosity:         deref(g.Porosity),
		ParticleDiameter: deref(g.ParticleDiameter),
	}

	if th := req.Thermal; th != nil {
		p.Thermal = thermal.State{
			InitialTemperature:      deref(th.InitialTemperature),
			HeatOfReaction:          deref(th.HeatOfReaction),
			HeatCapacity:            deref(th.HeatCapacity),
			HeatTransferCoefficient: deref(th.HeatTransferCoefficient),
			CoolantTemperature:      deref(th.CoolantTemperature),
		}
	}

	p.Target = deref(req.TargetConversion)
	return p, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
