// Package units provides the unit-system registry used to keep reactor
// quantities dimensionally consistent across SI, CGS and Imperial
// representations.
//
// Every registered quantity has, per system, a (factor, symbol) pair. The
// factor means "a value expressed in the quantity's SI unit, multiplied by
// factor, gives the value in this system". SI factors are always 1.
//
// The registry is built once at package initialization and never mutated;
// all lookups return values, never references into the table, so it is safe
// for concurrent use.
package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/reactorcalc/internal/calcerr"
)

// System identifies a unit system.
type System string

const (
	SI       System = "SI"
	CGS      System = "CGS"
	Imperial System = "Imperial"
)

// Systems lists the registered systems in display order.
var Systems = []System{SI, CGS, Imperial}

// Quantity identifies a unit-bearing physical quantity.
type Quantity string

const (
	Concentration           Quantity = "concentration"
	Time                    Quantity = "time"
	RateConstant            Quantity = "rate_constant"
	Temperature             Quantity = "temperature"
	Volume                  Quantity = "volume"
	Pressure                Quantity = "pressure"
	Energy                  Quantity = "energy"
	HeatCapacity            Quantity = "heat_capacity"
	HeatTransferCoefficient Quantity = "heat_transfer_coefficient"
	VolumetricHeatTransfer  Quantity = "volumetric_heat_transfer_coefficient"
	ReactionRate            Quantity = "reaction_rate"
	Length                  Quantity = "length"
	Velocity                Quantity = "velocity"
	FlowRate                Quantity = "flow_rate"
)

// Quantities lists every registered quantity in display order.
var Quantities = []Quantity{
	Concentration,
	Time,
	RateConstant,
	Temperature,
	Volume,
	Pressure,
	Energy,
	HeatCapacity,
	HeatTransferCoefficient,
	VolumetricHeatTransfer,
	ReactionRate,
	Length,
	Velocity,
	FlowRate,
}

// Factor is a resolved conversion factor and unit symbol.
type Factor struct {
	Factor float64 `json:"factor"`
	Symbol string  `json:"symbol"`
}

// Entry is one row of a system's unit table.
type Entry struct {
	Quantity Quantity `json:"quantity"`
	Factor
}

// Registry maps (system, quantity) to conversion factors and symbols.
type Registry struct {
	systems map[System]map[Quantity]Factor
}

// Default is the process-wide registry.
var Default = newDefault()

func newDefault() *Registry {
	return &Registry{
		systems: map[System]map[Quantity]Factor{
			SI: {
				Concentration:           {1, "kmol/m³"},
				Time:                    {1, "s"},
				Temperature:             {1, "K"},
				Volume:                  {1, "m³"},
				Pressure:                {1, "Pa"},
				Energy:                  {1, "J/mol"},
				HeatCapacity:            {1, "J/(kg·K)"},
				HeatTransferCoefficient: {1, "W/(m²·K)"},
				VolumetricHeatTransfer:  {1, "W/(m³·K)"},
				ReactionRate:            {1, "kmol/(m³·s)"},
				Length:                  {1, "m"},
				Velocity:                {1, "m/s"},
				FlowRate:                {1, "m³/s"},
			},
			CGS: {
				Concentration:           {1e-3, "mol/cm³"},
				Time:                    {1, "s"},
				Temperature:             {1, "K"},
				Volume:                  {1e6, "cm³"},
				Pressure:                {10, "dyn/cm²"},
				Energy:                  {1e7, "erg/mol"},
				HeatCapacity:            {1e4, "erg/(g·K)"},
				HeatTransferCoefficient: {1e3, "erg/(cm²·s·K)"},
				VolumetricHeatTransfer:  {10, "erg/(cm³·s·K)"},
				ReactionRate:            {1e-3, "mol/(cm³·s)"},
				Length:                  {100, "cm"},
				Velocity:                {100, "cm/s"},
				FlowRate:                {1e6, "cm³/s"},
			},
			Imperial: {
				Concentration:           {0.0624279606, "lbmol/ft³"},
				Time:                    {1, "s"},
				Temperature:             {1.8, "°R"},
				Volume:                  {35.3146667, "ft³"},
				Pressure:                {1.45037738e-4, "psi"},
				Energy:                  {0.429922614, "BTU/lbmol"},
				HeatCapacity:            {2.38845897e-4, "BTU/(lb·°R)"},
				HeatTransferCoefficient: {0.176110184, "BTU/(h·ft²·°R)"},
				VolumetricHeatTransfer:  {0.053678384, "BTU/(h·ft³·°R)"},
				ReactionRate:            {0.0624279606, "lbmol/(ft³·s)"},
				Length:                  {3.2808399, "ft"},
				Velocity:                {3.2808399, "ft/s"},
				FlowRate:                {35.3146667, "ft³/s"},
			},
		},
	}
}

// ParseSystem parses a unit-system name case-insensitively.
// An empty name selects SI.
func ParseSystem(name string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "si":
		return SI, nil
	case "cgs":
		return CGS, nil
	case "imperial", "us", "english":
		return Imperial, nil
	}
	return "", calcerr.Validation("units", "unknown unit system %q: must be one of SI, CGS, Imperial", name)
}

// ParseQuantity parses a quantity name case-insensitively. Dashes and spaces
// are accepted in place of underscores ("flow-rate", "rate constant").
func ParseQuantity(name string) (Quantity, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, q := range Quantities {
		if string(q) == norm {
			return q, nil
		}
	}
	return "", calcerr.UnknownQuantity("quantity %q is not registered", name)
}

// Resolve returns the conversion factor and symbol of quantity q in system.
// For RateConstant the reaction order must be supplied; its factor and
// symbol are synthesized from the system's concentration and time units
// because k carries concentration^(1-n)·time⁻¹.
func (r *Registry) Resolve(system System, q Quantity, order ...float64) (Factor, error) {
	table, ok := r.systems[system]
	if !ok {
		return Factor{}, calcerr.UnknownQuantity("unit system %q is not registered", system)
	}

	if q == RateConstant {
		if len(order) == 0 {
			return Factor{}, calcerr.Validation("order", "reaction order is required to resolve %s", RateConstant)
		}
		n := order[0]
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Factor{}, calcerr.Domain("order", "reaction order must be finite, got %g", n)
		}
		return rateConstant(table, n), nil
	}

	f, ok := table[q]
	if !ok {
		return Factor{}, calcerr.UnknownQuantity("quantity %q is not registered for %s", q, system)
	}
	return f, nil
}

// rateConstant builds the order-dependent rate-constant entry.
func rateConstant(table map[Quantity]Factor, n float64) Factor {
	conc := table[Concentration]
	tm := table[Time]
	exp := 1 - n

	var symbol string
	switch exp {
	case 0:
		symbol = tm.Symbol + "⁻¹"
	case 1:
		symbol = conc.Symbol + "·" + tm.Symbol + "⁻¹"
	default:
		symbol = "(" + conc.Symbol + ")^" + strconv.FormatFloat(exp, 'g', -1, 64) + "·" + tm.Symbol + "⁻¹"
	}

	return Factor{
		Factor: math.Pow(conc.Factor, exp) / tm.Factor,
		Symbol: symbol,
	}
}

// Convert re-expresses value of quantity q from one system in another:
//
//	value_to = value_from · factor_to(q) / factor_from(q)
//
// Converting S1 → S2 → S1 reproduces the original value within floating
// point tolerance.
func (r *Registry) Convert(value float64, q Quantity, from, to System, order ...float64) (float64, error) {
	if from == to {
		// Still resolve so unregistered quantities fail consistently.
		if _, err := r.Resolve(from, q, order...); err != nil {
			return 0, err
		}
		return value, nil
	}
	src, err := r.Resolve(from, q, order...)
	if err != nil {
		return 0, err
	}
	dst, err := r.Resolve(to, q, order...)
	if err != nil {
		return 0, err
	}
	return value * dst.Factor / src.Factor, nil
}

// ToSI converts a value expressed in system to the SI unit of q.
func (r *Registry) ToSI(value float64, q Quantity, system System, order ...float64) (float64, error) {
	return r.Convert(value, q, system, SI, order...)
}

// FromSI converts an SI value of q to system.
func (r *Registry) FromSI(value float64, q Quantity, system System, order ...float64) (float64, error) {
	return r.Convert(value, q, SI, system, order...)
}

// Symbol returns only the unit symbol of q in system.
func (r *Registry) Symbol(system System, q Quantity, order ...float64) (string, error) {
	f, err := r.Resolve(system, q, order...)
	if err != nil {
		return "", err
	}
	return f.Symbol, nil
}

// Table lists every quantity of system in display order. The rate-constant
// row is resolved at the given order.
func (r *Registry) Table(system System, order float64) ([]Entry, error) {
	entries := make([]Entry, 0, len(Quantities))
	for _, q := range Quantities {
		f, err := r.Resolve(system, q, order)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Quantity: q, Factor: f})
	}
	return entries, nil
}
