package thermal

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/roach88/reactorcalc/internal/calcerr"
)

// ProfileSegments is the number of equal bed segments sampled by a profile.
// Inlet and outlet are both included, so a profile yields ProfileSegments+1
// points.
const ProfileSegments = 10

// Bed describes a packed bed for temperature-profile sampling.
type Bed struct {
	CoolantTemperature float64
	HeatOfReaction     float64
	FlowRate           float64
	HeatCapacity       float64

	// EffectiveU is the bed-averaged coefficient from EffectiveU.
	EffectiveU float64

	Length float64
}

// Validate checks the bed parameters.
func (b Bed) Validate() error {
	positive := []struct {
		field string
		v     float64
	}{
		{"thermal.coolant_temperature", b.CoolantTemperature},
		{"geometry.flow_rate", b.FlowRate},
		{"thermal.heat_capacity", b.HeatCapacity},
		{"geometry.length", b.Length},
	}
	for _, p := range positive {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return calcerr.Domain(p.field, "must be positive, got %g", p.v)
		}
	}
	if math.IsNaN(b.EffectiveU) || math.IsInf(b.EffectiveU, 0) || b.EffectiveU < 0 {
		return calcerr.Domain("thermal.heat_transfer_coefficient", "effective coefficient must be non-negative, got %g", b.EffectiveU)
	}
	if math.IsNaN(b.HeatOfReaction) || math.IsInf(b.HeatOfReaction, 0) {
		return calcerr.Domain("thermal.heat_of_reaction", "must be finite, got %g", b.HeatOfReaction)
	}
	return nil
}

// TemperatureAt returns the bed temperature at axial position z:
//
//	T(z) = Tc + ΔHr/(F·Cp)·(1 − exp(−Ueff·z/(F·Cp)))
func (b Bed) TemperatureAt(z float64) float64 {
	fc := b.FlowRate * b.HeatCapacity
	return b.CoolantTemperature + b.HeatOfReaction/fc*(-math.Expm1(-b.EffectiveU*z/fc))
}

// Profile lazily yields (position, temperature) pairs at segments+1 equally
// spaced positions from inlet to outlet. The sequence is a pure function of
// the bed and may be ranged over any number of times.
func (b Bed) Profile(segments int) iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		if segments <= 0 {
			return
		}
		dz := b.Length / float64(segments)
		for i := 0; i <= segments; i++ {
			z := float64(i) * dz
			if !yield(z, b.TemperatureAt(z)) {
				return
			}
		}
	}
}

// Sample is one point of a temperature profile.
type Sample struct {
	Position    float64 `json:"position"`
	Temperature float64 `json:"temperature"`
}

// Envelope summarizes a temperature profile.
type Envelope struct {
	Max   float64
	Min   float64
	Range float64
}

// Summarize drains seq into samples and reduces them to an envelope.
// An empty sequence yields a zero envelope and no samples.
func Summarize(seq iter.Seq2[float64, float64]) (Envelope, []Sample) {
	var samples []Sample
	var temps []float64
	for z, temp := range seq {
		samples = append(samples, Sample{Position: z, Temperature: temp})
		temps = append(temps, temp)
	}
	if len(temps) == 0 {
		return Envelope{}, nil
	}
	hi, lo := floats.Max(temps), floats.Min(temps)
	return Envelope{Max: hi, Min: lo, Range: hi - lo}, samples
}
