package reactor

import (
	"math"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/units"
)

// CSTR is a continuous stirred-tank reactor governed by the mixed-flow
// balance
//
//	X = k·τ·Cref^(n−1) / (1 + k·τ·Cref^(n−1)),  τ = V/F
//
// and sized by its inverse V = F·X / (k·Cref^(n−1)·(1−X)).
type CSTR struct{}

func (CSTR) Type() model.Reactor { return model.CSTR }

// Compute implements Model.
func (c CSTR) Compute(mode model.Mode, p Params) (model.Result, error) {
	return compute(c, mode, p)
}

func (CSTR) residence(g Geometry) (float64, error) {
	if err := nonNegative("geometry.volume", g.Volume); err != nil {
		return 0, err
	}
	if err := positive("geometry.flow_rate", g.FlowRate); err != nil {
		return 0, err
	}
	return g.Volume / g.FlowRate, nil
}

// damkohler returns k·Cref^(n−1), the first-order-equivalent rate constant.
func damkohler(k, n, cref float64) (float64, error) {
	if err := positive("kinetics.rate_constant", k); err != nil {
		return 0, err
	}
	if err := positive("cref", cref); err != nil {
		return 0, err
	}
	if n == 1 {
		return k, nil
	}
	return k * math.Pow(cref, n-1), nil
}

func (CSTR) conversion(tau, k, n, cref float64) (float64, error) {
	if err := nonNegative("residence", tau); err != nil {
		return 0, err
	}
	kEff, err := damkohler(k, n, cref)
	if err != nil {
		return 0, err
	}
	a := kEff * tau
	return a / (1 + a), nil
}

func (CSTR) size(x, k, n, cref float64, g Geometry) (units.Quantity, float64, float64, error) {
	if err := positive("geometry.flow_rate", g.FlowRate); err != nil {
		return "", 0, 0, err
	}
	if x >= 1 {
		return "", 0, 0, calcerr.Domain("target_conversion", "volume is undefined for conversion %g >= 1", x)
	}
	kEff, err := damkohler(k, n, cref)
	if err != nil {
		return "", 0, 0, err
	}
	v := g.FlowRate * x / (kEff * (1 - x))
	return units.Volume, v, v / g.FlowRate, nil
}
