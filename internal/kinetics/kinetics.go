// Package kinetics implements power-law rate expressions and their closed-form
// integrated design equations.
//
// The functions here are reactor-agnostic. Callers decide what the residence
// measure means (batch time, L/u) and which concentration serves as Cref.
// Every function is pure and validates its own domain.
package kinetics

import (
	"math"

	"github.com/roach88/reactorcalc/internal/calcerr"
)

// GasConstant is R in J/(mol·K).
const GasConstant = 8.314

// Params are the kinetic parameters of a single power-law reaction.
type Params struct {
	// Order is the reaction order n >= 0. Fractional orders are allowed.
	Order float64

	// RateConstant is k in SI units for the given order.
	RateConstant float64

	// Arrhenius optionally replaces RateConstant with k(T).
	Arrhenius *Arrhenius
}

// Arrhenius parameterizes k(T) = A·exp(−Ea/(R·T)).
type Arrhenius struct {
	// ActivationEnergy is Ea in J/mol.
	ActivationEnergy float64

	// PreExponential is A, in the units of k.
	PreExponential float64

	// Temperature is T in K.
	Temperature float64
}

// Validate checks the order and the effective rate constant.
func (p Params) Validate() error {
	if err := checkOrder(p.Order); err != nil {
		return err
	}
	_, err := p.K()
	return err
}

// K returns the effective rate constant: k(T) when Arrhenius parameters are
// set, RateConstant otherwise.
func (p Params) K() (float64, error) {
	if p.Arrhenius != nil {
		return RateConstantAt(*p.Arrhenius)
	}
	if err := checkK(p.RateConstant); err != nil {
		return 0, err
	}
	return p.RateConstant, nil
}

// RateConstantAt evaluates the Arrhenius expression.
func RateConstantAt(a Arrhenius) (float64, error) {
	switch {
	case !finite(a.ActivationEnergy) || a.ActivationEnergy < 0:
		return 0, calcerr.Domain("kinetics.arrhenius.activation_energy", "must be a non-negative finite number, got %g", a.ActivationEnergy)
	case !finite(a.PreExponential) || a.PreExponential <= 0:
		return 0, calcerr.Domain("kinetics.arrhenius.pre_exponential", "must be positive, got %g", a.PreExponential)
	case !finite(a.Temperature) || a.Temperature <= 0:
		return 0, calcerr.Domain("kinetics.arrhenius.temperature", "absolute temperature must be positive, got %g", a.Temperature)
	}
	k := a.PreExponential * math.Exp(-a.ActivationEnergy/(GasConstant*a.Temperature))
	if err := checkK(k); err != nil {
		return 0, err
	}
	return k, nil
}

// Rate evaluates the rate law k·C^n. At n = 0 the rate is k regardless of C.
func Rate(c, k, n float64) (float64, error) {
	if err := checkOrder(n); err != nil {
		return 0, err
	}
	if err := checkK(k); err != nil {
		return 0, err
	}
	if !finite(c) || c < 0 {
		return 0, calcerr.Domain("concentration", "must be a non-negative finite number, got %g", c)
	}
	if n == 0 {
		return k, nil
	}
	return k * math.Pow(c, n), nil
}

// ConversionAfter returns the conversion reached after the given residence
// measure under the integrated plug-flow design equation:
//
//	n = 0:  X = k·τ/Cref
//	n = 1:  X = 1 − exp(−k·τ)
//	else:   X = 1 − (1 + (n−1)·k·τ·Cref^(n−1))^(1/(1−n))
//
// For n < 1 the result may reach or exceed 1 (the reactant is exhausted
// within τ); callers decide whether that is an error.
func ConversionAfter(residence, k, n, cref float64) (float64, error) {
	if err := checkArgs(k, n, cref); err != nil {
		return 0, err
	}
	if !finite(residence) || residence < 0 {
		return 0, calcerr.Domain("residence", "must be a non-negative finite number, got %g", residence)
	}

	switch n {
	case 0:
		return k * residence / cref, nil
	case 1:
		return -math.Expm1(-k * residence), nil
	}

	base := 1 + (n-1)*k*residence*math.Pow(cref, n-1)
	if base < 0 {
		return 0, calcerr.Domain("residence",
			"order %g drives the integrated rate base negative (%g); reactant is exhausted before the residence ends", n, base)
	}
	return 1 - math.Pow(base, 1/(1-n)), nil
}

// ResidenceFor is the closed-form inverse of ConversionAfter:
//
//	n = 0:  τ = X·Cref/k
//	n = 1:  τ = −ln(1−X)/k
//	else:   τ = ((1−X)^(1−n) − 1) / ((n−1)·k·Cref^(n−1))
func ResidenceFor(x, k, n, cref float64) (float64, error) {
	if err := checkArgs(k, n, cref); err != nil {
		return 0, err
	}
	if math.IsNaN(x) || x < 0 {
		return 0, calcerr.Domain("target_conversion", "must be non-negative, got %g", x)
	}
	if x >= 1 {
		return 0, calcerr.Domain("target_conversion", "residence is undefined for conversion %g >= 1", x)
	}

	switch n {
	case 0:
		return x * cref / k, nil
	case 1:
		return -math.Log1p(-x) / k, nil
	}
	return (math.Pow(1-x, 1-n) - 1) / ((n - 1) * k * math.Pow(cref, n-1)), nil
}

func checkArgs(k, n, cref float64) error {
	if err := checkOrder(n); err != nil {
		return err
	}
	if err := checkK(k); err != nil {
		return err
	}
	if !finite(cref) || cref <= 0 {
		return calcerr.Domain("cref", "reference concentration must be positive, got %g", cref)
	}
	return nil
}

func checkOrder(n float64) error {
	if !finite(n) || n < 0 {
		return calcerr.Domain("kinetics.order", "reaction order must be a non-negative finite number, got %g", n)
	}
	return nil
}

func checkK(k float64) error {
	if !finite(k) || k <= 0 {
		return calcerr.Domain("kinetics.rate_constant", "rate constant must be positive, got %g", k)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
