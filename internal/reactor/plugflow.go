package reactor

import (
	"github.com/roach88/reactorcalc/internal/kinetics"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/thermal"
	"github.com/roach88/reactorcalc/internal/units"
)

// plugFlow holds the relations PFR and PBR share: τ = L/u and the
// integrated design equation, sized by length.
type plugFlow struct{}

func (plugFlow) residence(g Geometry) (float64, error) {
	if err := nonNegative("geometry.length", g.Length); err != nil {
		return 0, err
	}
	if err := positive("geometry.velocity", g.Velocity); err != nil {
		return 0, err
	}
	return g.Length / g.Velocity, nil
}

func (plugFlow) conversion(tau, k, n, cref float64) (float64, error) {
	return kinetics.ConversionAfter(tau, k, n, cref)
}

func (plugFlow) size(x, k, n, cref float64, g Geometry) (units.Quantity, float64, float64, error) {
	if err := positive("geometry.velocity", g.Velocity); err != nil {
		return "", 0, 0, err
	}
	tau, err := kinetics.ResidenceFor(x, k, n, cref)
	if err != nil {
		return "", 0, 0, err
	}
	return units.Length, g.Velocity * tau, tau, nil
}

// PFR is an ideal plug-flow reactor.
type PFR struct{ plugFlow }

func (PFR) Type() model.Reactor { return model.PFR }

// Compute implements Model.
func (r PFR) Compute(mode model.Mode, p Params) (model.Result, error) {
	return compute(r, mode, p)
}

// PBR is a packed-bed reactor. Conversion, rate and size follow the PFR;
// temperature mode samples the bed temperature profile instead of the
// lumped balance.
type PBR struct{ plugFlow }

func (PBR) Type() model.Reactor { return model.PBR }

// Compute implements Model.
func (r PBR) Compute(mode model.Mode, p Params) (model.Result, error) {
	if mode == model.ModeTemperature {
		return r.profile(p)
	}
	return compute(r, mode, p)
}

// profile samples T(z) at thermal.ProfileSegments+1 points from inlet to
// outlet and reduces it to an envelope.
func (PBR) profile(p Params) (model.Result, error) {
	ueff, err := thermal.EffectiveU(p.Thermal.HeatTransferCoefficient, p.Geometry.Porosity, p.Geometry.ParticleDiameter)
	if err != nil {
		return nil, err
	}
	bed := thermal.Bed{
		CoolantTemperature: p.Thermal.CoolantTemperature,
		HeatOfReaction:     p.Thermal.HeatOfReaction,
		FlowRate:           p.Geometry.FlowRate,
		HeatCapacity:       p.Thermal.HeatCapacity,
		EffectiveU:         ueff,
		Length:             p.Geometry.Length,
	}
	if err := bed.Validate(); err != nil {
		return nil, err
	}

	env, samples := thermal.Summarize(bed.Profile(thermal.ProfileSegments))
	return model.TemperatureResult{
		Initial: bed.CoolantTemperature,
		Final:   samples[len(samples)-1].Temperature,
		Bed: &model.BedProfile{
			EffectiveU: ueff,
			Envelope:   env,
			Samples:    samples,
		},
	}, nil
}
