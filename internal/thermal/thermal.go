// Package thermal implements the lumped heat-balance approximations used to
// report reactor temperatures.
//
// These relations are screening estimates, not an energy balance: the
// reaction-heat and heat-removal terms are normalized by a fixed reference
// density and the heat-removal term carries no area. They reproduce the
// numbers of the reference calculators and are kept as-is.
package thermal

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/units"
)

const (
	// RhoRef is the mass-basis normalization applied to Cp, in kg/m³.
	RhoRef = 1000.0

	// ResidenceScale divides the residence before it enters the heat-removal
	// term.
	ResidenceScale = 60.0
)

// State is the thermal state of a reactor. Temperatures are absolute (K).
type State struct {
	InitialTemperature float64

	// HeatOfReaction is ΔHr. Negative values denote exothermic reactions.
	HeatOfReaction float64

	HeatCapacity            float64
	HeatTransferCoefficient float64
	CoolantTemperature      float64
}

// Validate checks that every field is finite, temperatures and Cp are
// positive, and U is non-negative.
func (s State) Validate() error {
	checks := []struct {
		field string
		v     float64
		min   float64
		incl  bool
	}{
		{"thermal.initial_temperature", s.InitialTemperature, 0, false},
		{"thermal.coolant_temperature", s.CoolantTemperature, 0, false},
		{"thermal.heat_capacity", s.HeatCapacity, 0, false},
		{"thermal.heat_transfer_coefficient", s.HeatTransferCoefficient, 0, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || c.v < c.min || (!c.incl && c.v == c.min) {
			rel := "positive"
			if c.incl {
				rel = "non-negative"
			}
			return calcerr.Domain(c.field, "must be %s, got %g", rel, c.v)
		}
	}
	if math.IsNaN(s.HeatOfReaction) || math.IsInf(s.HeatOfReaction, 0) {
		return calcerr.Domain("thermal.heat_of_reaction", "must be finite, got %g", s.HeatOfReaction)
	}
	return nil
}

// TemperatureAfter returns the final temperature after an extent of
// reaction (kmol/m³ of limiting reactant consumed) over the given residence:
//
//	T = T0 + ΔHr·extent/(Cp·ρref) − U·(T0−Tc)·(residence/60)/(Cp·ρref)
func TemperatureAfter(s State, extent, residence float64) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if math.IsNaN(extent) || extent < 0 {
		return 0, calcerr.Domain("extent", "must be non-negative, got %g", extent)
	}
	if math.IsNaN(residence) || residence < 0 {
		return 0, calcerr.Domain("residence", "must be non-negative, got %g", residence)
	}

	heating, err := reactionHeating(s.HeatOfReaction, extent, s.HeatCapacity)
	if err != nil {
		return 0, err
	}
	cooling := s.HeatTransferCoefficient * (s.InitialTemperature - s.CoolantTemperature) *
		(residence / ResidenceScale) / (s.HeatCapacity * RhoRef)

	return s.InitialTemperature + heating - cooling, nil
}

// reactionHeating evaluates ΔHr·extent/(Cp·ρref) as dimensioned values and
// checks that the result is a temperature.
func reactionHeating(dh, extent, cp float64) (float64, error) {
	reg := units.Default
	h, err := reg.New(dh, units.Energy)
	if err != nil {
		return 0, err
	}
	x, err := reg.New(extent, units.Concentration)
	if err != nil {
		return 0, err
	}
	c, err := reg.New(cp, units.HeatCapacity)
	if err != nil {
		return 0, err
	}
	rho := unit.New(RhoRef, unit.KilogramPerMeter3)

	dT := unit.Div(unit.Mul(h, x), unit.Mul(c, rho))
	if err := dT.Check(unit.Kelvin); err != nil {
		return 0, fmt.Errorf("thermal: reaction heating: %w", err)
	}
	return dT.Value(), nil
}

// EffectiveU returns the bed-averaged heat-transfer coefficient
// U·(1−ε)/dp of a packed bed.
func EffectiveU(u, porosity, particleDiameter float64) (float64, error) {
	switch {
	case math.IsNaN(u) || math.IsInf(u, 0) || u < 0:
		return 0, calcerr.Domain("thermal.heat_transfer_coefficient", "must be non-negative, got %g", u)
	case math.IsNaN(porosity) || porosity < 0 || porosity >= 1:
		return 0, calcerr.Domain("geometry.porosity", "must lie in [0, 1), got %g", porosity)
	case math.IsNaN(particleDiameter) || math.IsInf(particleDiameter, 0) || particleDiameter <= 0:
		return 0, calcerr.Domain("geometry.particle_diameter", "must be positive, got %g", particleDiameter)
	}
	return u * (1 - porosity) / particleDiameter, nil
}
