package units

import (
	"math"

	"github.com/ctessum/unit"

	"github.com/roach88/reactorcalc/internal/calcerr"
)

// AmountDim is the amount-of-substance dimension. Concentrations are carried
// in kmol/m³, so the dimension symbol is kmol ("mol" is reserved by the
// unit package).
var AmountDim = unit.NewDimension("kmol")

// siDimensions lists the SI dimensions of every order-independent quantity.
var siDimensions = map[Quantity]unit.Dimensions{
	Concentration: {AmountDim: 1, unit.LengthDim: -3},
	Time:          unit.Second,
	Temperature:   unit.Kelvin,
	Volume:        unit.Meter3,
	Pressure:      unit.Pascal,
	// ΔHr is labeled J/mol but taken per kmol, matching the kmol/m³ basis.
	Energy:        {unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -2, AmountDim: -1},
	HeatCapacity:  {unit.LengthDim: 2, unit.TimeDim: -2, unit.TemperatureDim: -1},
	HeatTransferCoefficient: {
		unit.MassDim:        1,
		unit.TimeDim:        -3,
		unit.TemperatureDim: -1,
	},
	VolumetricHeatTransfer: {
		unit.MassDim:        1,
		unit.LengthDim:      -1,
		unit.TimeDim:        -3,
		unit.TemperatureDim: -1,
	},
	ReactionRate: {AmountDim: 1, unit.LengthDim: -3, unit.TimeDim: -1},
	Length:       unit.Meter,
	Velocity:     unit.MeterPerSecond,
	FlowRate:     unit.Meter3PerSecond,
}

// Dimensions returns the SI dimensions of q. RateConstant dimensions are
// concentration^(1-n)·time⁻¹ and are only defined for integer orders.
func (r *Registry) Dimensions(q Quantity, order ...float64) (unit.Dimensions, error) {
	if q == RateConstant {
		if len(order) == 0 {
			return nil, calcerr.Validation("order", "reaction order is required for %s dimensions", RateConstant)
		}
		n := order[0]
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, calcerr.Domain("order", "rate constant dimensions need an integer order, got %g", n)
		}
		exp := int(1 - n)
		d := unit.Dimensions{unit.TimeDim: -1}
		if exp != 0 {
			d[AmountDim] = exp
			d[unit.LengthDim] = -3 * exp
		}
		return d, nil
	}

	d, ok := siDimensions[q]
	if !ok {
		return nil, calcerr.UnknownQuantity("quantity %q has no registered dimensions", q)
	}
	// Copy so callers cannot mutate the table.
	out := make(unit.Dimensions, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out, nil
}

// New wraps an SI value of q in a dimensioned unit value.
func (r *Registry) New(value float64, q Quantity, order ...float64) (*unit.Unit, error) {
	d, err := r.Dimensions(q, order...)
	if err != nil {
		return nil, err
	}
	return unit.New(value, d), nil
}
