package model

import (
	"strings"

	"github.com/roach88/reactorcalc/internal/stoich"
	"github.com/roach88/reactorcalc/internal/thermal"
	"github.com/roach88/reactorcalc/internal/units"
)

// Field is one numeric output of a calculation, in SI units.
type Field struct {
	Name  string
	Label string

	// Quantity is empty for dimensionless fields.
	Quantity units.Quantity

	// Order resolves RateConstant fields.
	Order float64

	Value float64
}

// Result is the outcome of a calculation. It is a closed set of variants:
// ConversionResult, RateResult, TemperatureResult and SizeResult.
type Result interface {
	// Mode returns the calculation mode that produced the result.
	Mode() Mode

	// Fields lists the numeric outputs in display order.
	Fields() []Field

	result()
}

// ConversionResult reports the conversion reached by a reactor.
type ConversionResult struct {
	Conversion float64

	// Residence is the residence measure in seconds (t, V/F or L/u).
	Residence float64

	// Reference is the initial concentration of the limiting reactant.
	Reference float64

	Limiting stoich.Species

	// Final holds the concentrations of every scheme species at the
	// reported conversion.
	Final stoich.Amounts
}

// RateResult reports the rate law evaluated at the reference concentration.
type RateResult struct {
	Rate         float64
	RateConstant float64
	Order        float64

	// Concentration is the concentration the rate was evaluated at.
	Concentration float64

	// Arrhenius is true when RateConstant came from k(T).
	Arrhenius bool
}

// TemperatureResult reports a heat-balance estimate. Packed beds report a
// sampled bed profile instead of the lumped balance.
type TemperatureResult struct {
	Initial    float64
	Final      float64
	Conversion float64
	Residence  float64

	// Bed is set for packed-bed profiles only.
	Bed *BedProfile
}

// BedProfile is a sampled packed-bed temperature profile.
type BedProfile struct {
	EffectiveU float64
	Envelope   thermal.Envelope
	Samples    []thermal.Sample
}

// SizeResult reports the sizing parameter needed to reach a target
// conversion.
type SizeResult struct {
	// Parameter is the sized quantity: Time, Volume or Length.
	Parameter units.Quantity

	Required  float64
	Residence float64
	Target    float64
}

func (ConversionResult) Mode() Mode  { return ModeConversion }
func (RateResult) Mode() Mode        { return ModeRate }
func (TemperatureResult) Mode() Mode { return ModeTemperature }
func (SizeResult) Mode() Mode        { return ModeSize }

func (ConversionResult) result()  {}
func (RateResult) result()        {}
func (TemperatureResult) result() {}
func (SizeResult) result()        {}

// Fields implements Result.
func (r ConversionResult) Fields() []Field {
	fields := []Field{
		{Name: "conversion", Label: "Conversion", Value: r.Conversion},
		{Name: "conversion_percent", Label: "Conversion (%)", Value: r.Conversion * 100},
		{Name: "residence_time", Label: "Residence time", Quantity: units.Time, Value: r.Residence},
		{Name: "reference_concentration", Label: "Limiting reactant initial concentration", Quantity: units.Concentration, Value: r.Reference},
	}
	for _, sp := range stoich.AllSpecies {
		v, ok := r.Final[sp]
		if !ok {
			continue
		}
		fields = append(fields, Field{
			Name:     "final_" + strings.ToLower(string(sp)),
			Label:    "Final concentration of " + string(sp),
			Quantity: units.Concentration,
			Value:    v,
		})
	}
	return fields
}

// Fields implements Result.
func (r RateResult) Fields() []Field {
	label := "Rate constant"
	if r.Arrhenius {
		label = "Temperature-adjusted rate constant"
	}
	return []Field{
		{Name: "rate", Label: "Reaction rate", Quantity: units.ReactionRate, Value: r.Rate},
		{Name: "rate_constant", Label: label, Quantity: units.RateConstant, Order: r.Order, Value: r.RateConstant},
		{Name: "concentration", Label: "Concentration", Quantity: units.Concentration, Value: r.Concentration},
		{Name: "order", Label: "Reaction order", Value: r.Order},
	}
}

// Fields implements Result.
func (r TemperatureResult) Fields() []Field {
	if b := r.Bed; b != nil {
		outlet := 0.0
		if n := len(b.Samples); n > 0 {
			outlet = b.Samples[n-1].Temperature
		}
		return []Field{
			{Name: "max_temperature", Label: "Maximum temperature", Quantity: units.Temperature, Value: b.Envelope.Max},
			{Name: "min_temperature", Label: "Minimum temperature", Quantity: units.Temperature, Value: b.Envelope.Min},
			{Name: "temperature_range", Label: "Temperature range", Quantity: units.Temperature, Value: b.Envelope.Range},
			{Name: "outlet_temperature", Label: "Outlet temperature", Quantity: units.Temperature, Value: outlet},
			{Name: "effective_heat_transfer_coefficient", Label: "Effective heat transfer coefficient", Quantity: units.VolumetricHeatTransfer, Value: b.EffectiveU},
		}
	}
	return []Field{
		{Name: "initial_temperature", Label: "Initial temperature", Quantity: units.Temperature, Value: r.Initial},
		{Name: "final_temperature", Label: "Final temperature", Quantity: units.Temperature, Value: r.Final},
		{Name: "temperature_change", Label: "Temperature change", Quantity: units.Temperature, Value: r.Final - r.Initial},
		{Name: "conversion", Label: "Conversion", Value: r.Conversion},
		{Name: "residence_time", Label: "Residence time", Quantity: units.Time, Value: r.Residence},
	}
}

// Fields implements Result.
func (r SizeResult) Fields() []Field {
	name, label := "required_time", "Required reaction time"
	switch r.Parameter {
	case units.Volume:
		name, label = "required_volume", "Required volume"
	case units.Length:
		name, label = "required_length", "Required length"
	}
	return []Field{
		{Name: name, Label: label, Quantity: r.Parameter, Value: r.Required},
		{Name: "residence_time", Label: "Residence time", Quantity: units.Time, Value: r.Residence},
		{Name: "target_conversion", Label: "Target conversion", Value: r.Target},
	}
}
