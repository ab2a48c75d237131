package model

import (
	"errors"
	"slices"
	"strings"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/stoich"
	"github.com/roach88/reactorcalc/internal/units"
)

// Reactor identifies an idealized reactor model.
type Reactor string

const (
	Batch Reactor = "batch"
	CSTR  Reactor = "cstr"
	PFR   Reactor = "pfr"
	PBR   Reactor = "pbr"
)

// Reactors lists every reactor type.
var Reactors = []Reactor{Batch, CSTR, PFR, PBR}

// Mode selects what a calculation computes.
type Mode string

const (
	ModeConversion  Mode = "conversion"
	ModeRate        Mode = "rate"
	ModeTemperature Mode = "temperature"
	ModeSize        Mode = "size"
)

// Modes lists every calculation mode.
var Modes = []Mode{ModeConversion, ModeRate, ModeTemperature, ModeSize}

// ParseReactor parses a reactor type case-insensitively.
func ParseReactor(s string) (Reactor, error) {
	r := Reactor(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Reactors, r) {
		return r, nil
	}
	return "", calcerr.Validation("reactor", "unknown reactor type %q: must be one of batch, cstr, pfr, pbr", s)
}

// ParseMode parses a calculation mode case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Modes, m) {
		return m, nil
	}
	return "", calcerr.Validation("mode", "unknown mode %q: must be one of conversion, rate, temperature, size", s)
}

// Request is a single calculation request. Numeric fields are pointers so
// that a missing value can be told apart from zero. All unit-bearing values
// are expressed in the request's unit system.
type Request struct {
	Reactor          string   `json:"reactor" yaml:"reactor"`
	Mode             string   `json:"mode" yaml:"mode"`
	Units            string   `json:"units,omitempty" yaml:"units,omitempty"`
	Scheme           string   `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Stoichiometry    Species  `json:"stoichiometry,omitzero" yaml:"stoichiometry,omitempty"`
	Initial          Species  `json:"initial,omitzero" yaml:"initial,omitempty"`
	Kinetics         Kinetics `json:"kinetics,omitzero" yaml:"kinetics,omitempty"`
	Geometry         Geometry `json:"geometry,omitzero" yaml:"geometry,omitempty"`
	Thermal          *Thermal `json:"thermal,omitempty" yaml:"thermal,omitempty"`
	TargetConversion *float64 `json:"target_conversion,omitempty" yaml:"target_conversion,omitempty"`
}

// Species holds one optional value per species.
type Species struct {
	A *float64 `json:"a,omitempty" yaml:"a,omitempty"`
	B *float64 `json:"b,omitempty" yaml:"b,omitempty"`
	C *float64 `json:"c,omitempty" yaml:"c,omitempty"`
	D *float64 `json:"d,omitempty" yaml:"d,omitempty"`
}

// Kinetics holds the rate-law parameters of a request.
type Kinetics struct {
	Order        *float64   `json:"order,omitempty" yaml:"order,omitempty"`
	RateConstant *float64   `json:"rate_constant,omitempty" yaml:"rate_constant,omitempty"`
	Arrhenius    *Arrhenius `json:"arrhenius,omitempty" yaml:"arrhenius,omitempty"`
}

// Arrhenius holds the temperature-correction parameters of a request.
// When present, k(T) replaces the rate constant.
type Arrhenius struct {
	ActivationEnergy *float64 `json:"activation_energy,omitempty" yaml:"activation_energy,omitempty"`
	PreExponential   *float64 `json:"pre_exponential,omitempty" yaml:"pre_exponential,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// Geometry holds the reactor-specific sizing inputs. Which fields are
// required depends on the reactor type and mode.
type Geometry struct {
	Time             *float64 `json:"time,omitempty" yaml:"time,omitempty"`
	Volume           *float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
	FlowRate         *float64 `json:"flow_rate,omitempty" yaml:"flow_rate,omitempty"`
	Length           *float64 `json:"length,omitempty" yaml:"length,omitempty"`
	Velocity         *float64 `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Porosity         *float64 `json:"porosity,omitempty" yaml:"porosity,omitempty"`
	ParticleDiameter *float64 `json:"particle_diameter,omitempty" yaml:"particle_diameter,omitempty"`
}

// Thermal holds the heat-balance inputs of a temperature request.
type Thermal struct {
	InitialTemperature      *float64 `json:"initial_temperature,omitempty" yaml:"initial_temperature,omitempty"`
	HeatOfReaction          *float64 `json:"heat_of_reaction,omitempty" yaml:"heat_of_reaction,omitempty"`
	HeatCapacity            *float64 `json:"heat_capacity,omitempty" yaml:"heat_capacity,omitempty"`
	HeatTransferCoefficient *float64 `json:"heat_transfer_coefficient,omitempty" yaml:"heat_transfer_coefficient,omitempty"`
	CoolantTemperature      *float64 `json:"coolant_temperature,omitempty" yaml:"coolant_temperature,omitempty"`
}

// Validate reports every missing or malformed field of r. It checks
// presence and enumerations only; numeric domains are checked by the
// calculation packages. Returns nil if r is well-formed.
func (r *Request) Validate() []*calcerr.Error {
	var errs []*calcerr.Error
	need := func(field string, v *float64) {
		if v == nil {
			errs = append(errs, calcerr.Validation(field, "is required"))
		}
	}
	add := func(err error) {
		var ce *calcerr.Error
		if errors.As(err, &ce) {
			errs = append(errs, ce)
		}
	}

	reactor, err := ParseReactor(r.Reactor)
	add(err)
	mode, err := ParseMode(r.Mode)
	add(err)
	_, err = units.ParseSystem(r.Units)
	add(err)
	kind, err := stoich.ParseKind(r.Scheme)
	add(err)

	// The packed-bed temperature profile depends on the thermal and bed
	// inputs only.
	if reactor != PBR || mode != ModeTemperature {
		need("initial.a", r.Initial.A)
		if kind == stoich.KindABToC || kind == stoich.KindABToCD {
			need("initial.b", r.Initial.B)
		}

		need("kinetics.order", r.Kinetics.Order)
		if a := r.Kinetics.Arrhenius; a != nil {
			need("kinetics.arrhenius.activation_energy", a.ActivationEnergy)
			need("kinetics.arrhenius.pre_exponential", a.PreExponential)
			need("kinetics.arrhenius.temperature", a.Temperature)
		} else {
			need("kinetics.rate_constant", r.Kinetics.RateConstant)
		}
	}

	if reactor == "" || mode == "" {
		return errs
	}

	g := r.Geometry
	switch mode {
	case ModeConversion:
		r.needResidence(reactor, need)

	case ModeTemperature:
		th := r.Thermal
		if th == nil {
			th = &Thermal{}
		}
		if reactor == PBR {
			need("geometry.flow_rate", g.FlowRate)
			need("geometry.length", g.Length)
			need("geometry.porosity", g.Porosity)
			need("geometry.particle_diameter", g.ParticleDiameter)
		} else {
			r.needResidence(reactor, need)
			need("thermal.initial_temperature", th.InitialTemperature)
		}
		need("thermal.heat_of_reaction", th.HeatOfReaction)
		need("thermal.heat_capacity", th.HeatCapacity)
		need("thermal.heat_transfer_coefficient", th.HeatTransferCoefficient)
		need("thermal.coolant_temperature", th.CoolantTemperature)

	case ModeSize:
		need("target_conversion", r.TargetConversion)
		switch reactor {
		case CSTR:
			need("geometry.flow_rate", g.FlowRate)
		case PFR, PBR:
			need("geometry.velocity", g.Velocity)
		}
	}

	return errs
}

// needResidence requires the inputs that define the residence measure of
// the given reactor.
func (r *Request) needResidence(reactor Reactor, need func(string, *float64)) {
	g := r.Geometry
	switch reactor {
	case Batch:
		need("geometry.time", g.Time)
	case CSTR:
		need("geometry.volume", g.Volume)
		need("geometry.flow_rate", g.FlowRate)
	case PFR, PBR:
		need("geometry.length", g.Length)
		need("geometry.velocity", g.Velocity)
	}
}

// FirstError returns the first validation error of r, or nil.
func (r *Request) FirstError() error {
	if errs := r.Validate(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// UnitField is a unit-bearing numeric field of a request.
type UnitField struct {
	// Path is the dotted JSON path of the field.
	Path string

	Quantity units.Quantity

	// Value points into the request. Nil pointers are skipped by callers.
	Value *float64
}

// UnitFields lists every unit-bearing field of r whose value is set.
// Dimensionless fields (order, coefficients, porosity, conversion) are not
// included. Rate-constant fields are resolved at the request's order by the
// caller.
func (r *Request) UnitFields() []UnitField {
	all := []UnitField{
		{"initial.a", units.Concentration, r.Initial.A},
		{"initial.b", units.Concentration, r.Initial.B},
		{"initial.c", units.Concentration, r.Initial.C},
		{"initial.d", units.Concentration, r.Initial.D},
		{"kinetics.rate_constant", units.RateConstant, r.Kinetics.RateConstant},
		{"geometry.time", units.Time, r.Geometry.Time},
		{"geometry.volume", units.Volume, r.Geometry.Volume},
		{"geometry.flow_rate", units.FlowRate, r.Geometry.FlowRate},
		{"geometry.length", units.Length, r.Geometry.Length},
		{"geometry.velocity", units.Velocity, r.Geometry.Velocity},
		{"geometry.particle_diameter", units.Length, r.Geometry.ParticleDiameter},
	}
	if a := r.Kinetics.Arrhenius; a != nil {
		all = append(all,
			UnitField{"kinetics.arrhenius.activation_energy", units.Energy, a.ActivationEnergy},
			UnitField{"kinetics.arrhenius.pre_exponential", units.RateConstant, a.PreExponential},
			UnitField{"kinetics.arrhenius.temperature", units.Temperature, a.Temperature},
		)
	}
	if th := r.Thermal; th != nil {
		all = append(all,
			UnitField{"thermal.initial_temperature", units.Temperature, th.InitialTemperature},
			UnitField{"thermal.heat_of_reaction", units.Energy, th.HeatOfReaction},
			UnitField{"thermal.heat_capacity", units.HeatCapacity, th.HeatCapacity},
			UnitField{"thermal.heat_transfer_coefficient", units.HeatTransferCoefficient, th.HeatTransferCoefficient},
			UnitField{"thermal.coolant_temperature", units.Temperature, th.CoolantTemperature},
		)
	}

	set := all[:0]
	for _, f := range all {
		if f.Value != nil {
			set = append(set, f)
		}
	}
	return set
}

// Clone returns a deep copy of r, so converting one copy never changes the
// other.
func (r *Request) Clone() *Request {
	c := *r
	c.Stoichiometry = r.Stoichiometry.clone()
	c.Initial = r.Initial.clone()
	c.Kinetics.Order = clonePtr(r.Kinetics.Order)
	c.Kinetics.RateConstant = clonePtr(r.Kinetics.RateConstant)
	if a := r.Kinetics.Arrhenius; a != nil {
		c.Kinetics.Arrhenius = &Arrhenius{
			ActivationEnergy: clonePtr(a.ActivationEnergy),
			PreExponential:   clonePtr(a.PreExponential),
			Temperature:      clonePtr(a.Temperature),
		}
	}
	g := r.Geometry
	c.Geometry = Geometry{
		Time:             clonePtr(g.Time),
		Volume:           clonePtr(g.Volume),
		FlowRate:         clonePtr(g.FlowRate),
		Length:           clonePtr(g.Length),
		Velocity:         clonePtr(g.Velocity),
		Porosity:         clonePtr(g.Porosity),
		ParticleDiameter: clonePtr(g.ParticleDiameter),
	}
	if th := r.Thermal; th != nil {
		c.Thermal = &Thermal{
			InitialTemperature:      clonePtr(th.InitialTemperature),
			HeatOfReaction:          clonePtr(th.HeatOfReaction),
			HeatCapacity:            clonePtr(th.HeatCapacity),
			HeatTransferCoefficient: clonePtr(th.HeatTransferCoefficient),
			CoolantTemperature:      clonePtr(th.CoolantTemperature),
		}
	}
	c.TargetConversion = clonePtr(r.TargetConversion)
	return &c
}

func (s Species) clone() Species {
	return Species{A: clonePtr(s.A), B: clonePtr(s.B), C: clonePtr(s.C), D: clonePtr(s.D)}
}

// Coefficients converts the request's stoichiometry to scheme coefficients.
func (s Species) Coefficients() stoich.Coefficients {
	return stoich.Coefficients{A: s.A, B: s.B, C: s.C, D: s.D}
}

// Amounts converts the request's initial amounts, treating missing species
// as zero.
func (s Species) Amounts() stoich.Amounts {
	out := stoich.Amounts{}
	for sp, v := range map[stoich.Species]*float64{stoich.A: s.A, stoich.B: s.B, stoich.C: s.C, stoich.D: s.D} {
		if v != nil {
			out[sp] = *v
		}
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float returns a pointer to v. It keeps request literals short.
func Float(v float64) *float64 {
	return &v
}
