package reactor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/kinetics"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/stoich"
	"github.com/roach88/reactorcalc/internal/thermal"
	"github.com/roach88/reactorcalc/internal/units"
)

func firstOrder(g Geometry) Params {
	return Params{
		Reaction: stoich.Reaction{Scheme: stoich.AToB{NuA: 1, NuB: 1}, Initial: stoich.Amounts{stoich.A: 1}},
		Kinetics: kinetics.Params{Order: 1, RateConstant: 0.1},
		Geometry: g,
	}
}

func mustCompute(t *testing.T, r model.Reactor, mode model.Mode, p Params) model.Result {
	t.Helper()
	m, err := For(r)
	require.NoError(t, err)
	assert.Equal(t, r, m.Type())

	res, err := m.Compute(mode, p)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, mode, res.Mode())
	return res
}

func TestBatch_FirstOrderConversion(t *testing.T) {
	res := mustCompute(t, model.Batch, model.ModeConversion, firstOrder(Geometry{Time: 10}))

	conv := res.(model.ConversionResult)
	assert.InDelta(t, 0.6321, conv.Conversion, 1e-4)
	assert.InDelta(t, 1-math.Exp(-1), conv.Conversion, 1e-12)
	assert.Equal(t, 10.0, conv.Residence)
	assert.Equal(t, stoich.A, conv.Limiting)
	assert.InDelta(t, math.Exp(-1), conv.Final[stoich.A], 1e-12)
	assert.InDelta(t, 1-math.Exp(-1), conv.Final[stoich.B], 1e-12)
}

func TestCSTR_FirstOrderConversion(t *testing.T) {
	res := mustCompute(t, model.CSTR, model.ModeConversion, firstOrder(Geometry{Volume: 100, FlowRate: 10}))

	conv := res.(model.ConversionResult)
	assert.InDelta(t, 0.5, conv.Conversion, 1e-12)
	assert.Equal(t, 10.0, conv.Residence)
}

func TestPFR_FirstOrderConversion(t *testing.T) {
	res := mustCompute(t, model.PFR, model.ModeConversion, firstOrder(Geometry{Length: 10, Velocity: 1}))

	conv := res.(model.ConversionResult)
	assert.InDelta(t, 1-math.Exp(-1), conv.Conversion, 1e-12)
}

func TestPFR_MatchesBatchAtEqualResidence(t *testing.T) {
	for _, n := range []float64{0, 0.5, 1, 2, 3} {
		p := firstOrder(Geometry{Time: 4, Length: 8, Velocity: 2})
		p.Kinetics.Order = n
		p.Kinetics.RateConstant = 0.05

		batch := mustCompute(t, model.Batch, model.ModeConversion, p).(model.ConversionResult)
		pfr := mustCompute(t, model.PFR, model.ModeConversion, p).(model.ConversionResult)
		pbr := mustCompute(t, model.PBR, model.ModeConversion, p).(model.ConversionResult)

		assert.InDelta(t, batch.Conversion, pfr.Conversion, 1e-12, "n=%g", n)
		assert.InDelta(t, batch.Conversion, pbr.Conversion, 1e-12, "n=%g", n)
	}
}

func TestCSTR_MixedFlowDiffersFromPlugFlow(t *testing.T) {
	p := firstOrder(Geometry{Volume: 10, FlowRate: 1, Length: 10, Velocity: 1})
	p.Reaction.Initial[stoich.A] = 2

	tests := []struct {
		order     float64
		cstr, pfr float64
	}{
		{1, 0.5, 1 - math.Exp(-1)},
		// kτ·Cref^0.5 = √2
		{1.5, math.Sqrt2 / (1 + math.Sqrt2), 1 - math.Pow(1+0.5*math.Sqrt2, -2)},
	}

	for _, tt := range tests {
		p.Kinetics.Order = tt.order
		cstr := mustCompute(t, model.CSTR, model.ModeConversion, p).(model.ConversionResult)
		pfr := mustCompute(t, model.PFR, model.ModeConversion, p).(model.ConversionResult)

		assert.InDelta(t, tt.cstr, cstr.Conversion, 1e-12, "n=%g", tt.order)
		assert.InDelta(t, tt.pfr, pfr.Conversion, 1e-12, "n=%g", tt.order)
		assert.NotEqual(t, cstr.Conversion, pfr.Conversion)
	}
}

func TestCSTR_RequiredVolume(t *testing.T) {
	p := firstOrder(Geometry{FlowRate: 10})
	p.Target = 0.5

	res := mustCompute(t, model.CSTR, model.ModeSize, p).(model.SizeResult)
	assert.Equal(t, units.Volume, res.Parameter)
	assert.InDelta(t, 100, res.Required, 1e-9)
	assert.InDelta(t, 10, res.Residence, 1e-9)
	assert.Equal(t, 0.5, res.Target)
}

func TestCSTR_SizeInvertsConversion(t *testing.T) {
	for _, n := range []float64{0, 1, 2} {
		p := firstOrder(Geometry{FlowRate: 3})
		p.Kinetics.Order = n
		p.Reaction.Initial[stoich.A] = 1.7
		p.Target = 0.4

		sized := mustCompute(t, model.CSTR, model.ModeSize, p).(model.SizeResult)

		p.Geometry.Volume = sized.Required
		conv := mustCompute(t, model.CSTR, model.ModeConversion, p).(model.ConversionResult)
		assert.InDelta(t, 0.4, conv.Conversion, 1e-9, "n=%g", n)
	}
}

func TestPlugFlow_RequiredLength(t *testing.T) {
	p := firstOrder(Geometry{Velocity: 2})
	p.Target = 1 - math.Exp(-1)

	for _, r := range []model.Reactor{model.PFR, model.PBR} {
		res := mustCompute(t, r, model.ModeSize, p).(model.SizeResult)
		assert.Equal(t, units.Length, res.Parameter)
		assert.InDelta(t, 20, res.Required, 1e-9)
		assert.InDelta(t, 10, res.Residence, 1e-9)
	}
}

func TestBatch_RequiredTime(t *testing.T) {
	p := firstOrder(Geometry{})
	p.Target = 0.5

	res := mustCompute(t, model.Batch, model.ModeSize, p).(model.SizeResult)
	assert.Equal(t, units.Time, res.Parameter)
	assert.InDelta(t, math.Ln2/0.1, res.Required, 1e-9)
}

func TestSize_TargetOutOfRange(t *testing.T) {
	for _, r := range model.Reactors {
		p := firstOrder(Geometry{FlowRate: 1, Velocity: 1})
		p.Target = 1

		m, err := For(r)
		require.NoError(t, err)
		_, err = m.Compute(model.ModeSize, p)
		assert.True(t, calcerr.Is(err, calcerr.KindDomain), "%s", r)
	}
}

func TestRate_SecondOrder(t *testing.T) {
	p := Params{
		Reaction: stoich.Reaction{Scheme: stoich.AToB{NuA: 1, NuB: 1}, Initial: stoich.Amounts{stoich.A: 2}},
		Kinetics: kinetics.Params{Order: 2, RateConstant: 0.5},
	}

	for _, r := range model.Reactors {
		res := mustCompute(t, r, model.ModeRate, p).(model.RateResult)
		assert.InDelta(t, 2.0, res.Rate, 1e-12)
		assert.Equal(t, 2.0, res.Concentration)
		assert.False(t, res.Arrhenius)
	}
}

func TestRate_ArrheniusReplacesK(t *testing.T) {
	p := firstOrder(Geometry{})
	p.Kinetics.Arrhenius = &kinetics.Arrhenius{ActivationEnergy: 8314, PreExponential: 10, Temperature: 1000}

	res := mustCompute(t, model.PBR, model.ModeRate, p).(model.RateResult)
	assert.InDelta(t, 10*math.Exp(-1), res.RateConstant, 1e-12)
	assert.InDelta(t, 10*math.Exp(-1), res.Rate, 1e-12)
	assert.True(t, res.Arrhenius)
}

func TestRate_UsesLimitingReactant(t *testing.T) {
	p := Params{
		Reaction: stoich.Reaction{
			Scheme:  stoich.ABToC{NuA: 1, NuB: 2, NuC: 1},
			Initial: stoich.Amounts{stoich.A: 1, stoich.B: 0.5},
		},
		Kinetics: kinetics.Params{Order: 1, RateConstant: 2},
	}
	res := mustCompute(t, model.Batch, model.ModeRate, p).(model.RateResult)
	assert.Equal(t, 0.5, res.Concentration)
	assert.InDelta(t, 1.0, res.Rate, 1e-12)
}

func TestConversion_OutOfRange(t *testing.T) {
	p := firstOrder(Geometry{Time: 20})
	p.Kinetics.Order = 0

	_, err := Batch{}.Compute(model.ModeConversion, p)
	require.Error(t, err)
	assert.True(t, calcerr.Is(err, calcerr.KindConversionOutOfRange))
}

func TestConversion_DomainErrors(t *testing.T) {
	tests := []struct {
		name  string
		r     model.Reactor
		p     Params
		field string
	}{
		{"negative time", model.Batch, firstOrder(Geometry{Time: -1}), "geometry.time"},
		{"zero flow", model.CSTR, firstOrder(Geometry{Volume: 1}), "geometry.flow_rate"},
		{"zero velocity", model.PFR, firstOrder(Geometry{Length: 1}), "geometry.velocity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := For(tt.r)
			require.NoError(t, err)
			_, err = m.Compute(model.ModeConversion, tt.p)

			var ce *calcerr.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, calcerr.KindDomain, ce.Kind)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestConversion_NegativeRateConstant(t *testing.T) {
	p := firstOrder(Geometry{Volume: 1, FlowRate: 1})
	p.Kinetics.RateConstant = -0.1

	_, err := CSTR{}.Compute(model.ModeConversion, p)
	assert.True(t, calcerr.Is(err, calcerr.KindDomain))
}

func TestTemperature_LumpedBalance(t *testing.T) {
	p := firstOrder(Geometry{Time: 10})
	p.Thermal = thermal.State{
		InitialTemperature:      350,
		HeatOfReaction:          -50000,
		HeatCapacity:            4.18,
		HeatTransferCoefficient: 500,
		CoolantTemperature:      300,
	}

	res := mustCompute(t, model.Batch, model.ModeTemperature, p).(model.TemperatureResult)

	x := 1 - math.Exp(-1)
	want, err := thermal.TemperatureAfter(p.Thermal, 1*x, 10)
	require.NoError(t, err)
	assert.InDelta(t, want, res.Final, 1e-12)
	assert.Equal(t, 350.0, res.Initial)
	assert.InDelta(t, x, res.Conversion, 1e-12)
	assert.Nil(t, res.Bed)
}

func TestTemperature_RequiresThermalState(t *testing.T) {
	_, err := CSTR{}.Compute(model.ModeTemperature, firstOrder(Geometry{Volume: 100, FlowRate: 10}))
	assert.True(t, calcerr.Is(err, calcerr.KindDomain))
}

func TestPBR_TemperatureProfile(t *testing.T) {
	p := Params{
		Geometry: Geometry{FlowRate: 10, Length: 5, Porosity: 0.4, ParticleDiameter: 0.005},
		Thermal: thermal.State{
			HeatOfReaction:          -50000,
			HeatCapacity:            4.18,
			HeatTransferCoefficient: 0.01,
			CoolantTemperature:      300,
		},
	}

	res := mustCompute(t, model.PBR, model.ModeTemperature, p).(model.TemperatureResult)
	require.NotNil(t, res.Bed)
	require.Len(t, res.Bed.Samples, thermal.ProfileSegments+1)

	assert.InDelta(t, 1.2, res.Bed.EffectiveU, 1e-12)
	assert.Equal(t, 300.0, res.Bed.Samples[0].Temperature)
	assert.Equal(t, 300.0, res.Bed.Envelope.Max)
	assert.Less(t, res.Bed.Envelope.Min, 300.0)
	assert.Equal(t, res.Bed.Samples[thermal.ProfileSegments].Temperature, res.Final)
}

func TestPBR_TemperatureBadPorosity(t *testing.T) {
	p := Params{
		Geometry: Geometry{FlowRate: 10, Length: 5, Porosity: 1.2, ParticleDiameter: 0.005},
		Thermal:  thermal.State{HeatCapacity: 4.18, HeatTransferCoefficient: 1, CoolantTemperature: 300},
	}
	_, err := PBR{}.Compute(model.ModeTemperature, p)
	assert.True(t, calcerr.Is(err, calcerr.KindDomain))
}

func TestFor_Unknown(t *testing.T) {
	_, err := For(model.Reactor("fluidized"))
	assert.True(t, calcerr.Is(err, calcerr.KindValidation))

	_, err = Batch{}.Compute(model.Mode("pressure"), firstOrder(Geometry{Time: 1}))
	assert.True(t, calcerr.Is(err, calcerr.KindValidation))
}
