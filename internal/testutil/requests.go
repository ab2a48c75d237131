package testutil

import "github.com/roach88/reactorcalc/internal/model"

var f = model.Float

// BatchConversion is the first-order batch request: C0 = 1 kmol/m³,
// k = 0.1 s⁻¹, t = 10 s. X = 1 − e⁻¹.
func BatchConversion() *model.Request {
	return &model.Request{
		Reactor:  "batch",
		Mode:     "conversion",
		Initial:  model.Species{A: f(1.0)},
		Kinetics: model.Kinetics{Order: f(1), RateConstant: f(0.1)},
		Geometry: model.Geometry{Time: f(10)},
	}
}

// CSTRConversion is the first-order CSTR request: V = 100 m³, F = 10 m³/s.
// X = 0.5.
func CSTRConversion() *model.Request {
	return &model.Request{
		Reactor:  "cstr",
		Mode:     "conversion",
		Initial:  model.Species{A: f(1.0)},
		Kinetics: model.Kinetics{Order: f(1), RateConstant: f(0.1)},
		Geometry: model.Geometry{Volume: f(100), FlowRate: f(10)},
	}
}

// PFRConversion is the first-order PFR request: L = 10 m, u = 1 m/s.
// X = 1 − e⁻¹.
func PFRConversion() *model.Request {
	return &model.Request{
		Reactor:  "pfr",
		Mode:     "conversion",
		Initial:  model.Species{A: f(1.0)},
		Kinetics: model.Kinetics{Order: f(1), RateConstant: f(0.1)},
		Geometry: model.Geometry{Length: f(10), Velocity: f(1)},
	}
}

// CSTRVolume sizes a first-order CSTR for X = 0.5 at F = 10 m³/s.
// V = 100 m³.
func CSTRVolume() *model.Request {
	return &model.Request{
		Reactor:          "cstr",
		Mode:             "size",
		Initial:          model.Species{A: f(1.0)},
		Kinetics:         model.Kinetics{Order: f(1), RateConstant: f(0.1)},
		Geometry:         model.Geometry{FlowRate: f(10)},
		TargetConversion: f(0.5),
	}
}

// SecondOrderRate evaluates r = 0.5·2² = 2 kmol/(m³·s).
func SecondOrderRate() *model.Request {
	return &model.Request{
		Reactor:  "batch",
		Mode:     "rate",
		Initial:  model.Species{A: f(2.0)},
		Kinetics: model.Kinetics{Order: f(2), RateConstant: f(0.5)},
	}
}

// BatchTemperature runs the lumped heat balance over the BatchConversion
// reaction.
func BatchTemperature() *model.Request {
	r := BatchConversion()
	r.Mode = "temperature"
	r.Thermal = &model.Thermal{
		InitialTemperature:      f(350),
		HeatOfReaction:          f(50000),
		HeatCapacity:            f(4000),
		HeatTransferCoefficient: f(500),
		CoolantTemperature:      f(300),
	}
	return r
}

// PBRProfile samples a packed-bed temperature profile.
func PBRProfile() *model.Request {
	return &model.Request{
		Reactor: "pbr",
		Mode:    "temperature",
		Geometry: model.Geometry{
			FlowRate:         f(2),
			Length:           f(5),
			Porosity:         f(0.4),
			ParticleDiameter: f(0.005),
		},
		Thermal: &model.Thermal{
			HeatOfReaction:          f(-60000),
			HeatCapacity:            f(1500),
			HeatTransferCoefficient: f(2),
			CoolantTemperature:      f(500),
		},
	}
}

// Scenarios returns the reference requests keyed by name.
func Scenarios() map[string]*model.Request {
	return map[string]*model.Request{
		"batch_conversion":  BatchConversion(),
		"cstr_conversion":   CSTRConversion(),
		"pfr_conversion":    PFRConversion(),
		"cstr_volume":       CSTRVolume(),
		"second_order_rate": SecondOrderRate(),
		"batch_temperature": BatchTemperature(),
		"pbr_profile":       PBRProfile(),
	}
}
