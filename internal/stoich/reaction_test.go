package stoich

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactorcalc/internal/calcerr"
)

func ptr(v float64) *float64 { return &v }

func TestParseKind(t *testing.T) {
	k, err := ParseKind("a_plus_b_to_c")
	require.NoError(t, err)
	assert.Equal(t, KindABToC, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindAToB, k)

	_, err = ParseKind("A_TO_Z")
	assert.True(t, calcerr.Is(err, calcerr.KindValidation))
}

func TestNewScheme_DefaultsToUnitCoefficients(t *testing.T) {
	s, err := NewScheme(KindABToCD, Coefficients{B: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, ABToCD{NuA: 1, NuB: 2, NuC: 1, NuD: 1}, s)
}

func TestNewScheme_IgnoresUnusedCoefficients(t *testing.T) {
	s, err := NewScheme(KindAToB, Coefficients{C: ptr(-3), D: ptr(0)})
	require.NoError(t, err)

	_, ok := s.Coefficient(C)
	assert.False(t, ok)
	_, ok = s.Coefficient(D)
	assert.False(t, ok)
}

func TestNewScheme_NonPositiveCoefficient(t *testing.T) {
	for _, bad := range []float64{0, -1} {
		_, err := NewScheme(KindABToC, Coefficients{C: ptr(bad)})
		require.Error(t, err)
		assert.True(t, calcerr.Is(err, calcerr.KindInvalidStoichiometry))

		var ce *calcerr.Error
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "stoichiometry.c", ce.Field)
	}
}

func TestLimitingReactant_SingleReactant(t *testing.T) {
	r := Reaction{Scheme: AToBC{NuA: 2, NuB: 1, NuC: 1}, Initial: Amounts{A: 1.5}}

	lim, err := LimitingReactant(r)
	require.NoError(t, err)
	assert.Equal(t, A, lim.Species)
	assert.Equal(t, 1.5, lim.Value)
	assert.Equal(t, 1.5, lim.Initial)
}

func TestLimitingReactant_SelectsSmallerRatio(t *testing.T) {
	tests := []struct {
		name    string
		scheme  Scheme
		initial Amounts
		want    Species
		value   float64
	}{
		{"A limiting", ABToC{NuA: 1, NuB: 1, NuC: 1}, Amounts{A: 1, B: 2}, A, 1},
		{"B limiting", ABToC{NuA: 1, NuB: 1, NuC: 1}, Amounts{A: 2, B: 1}, B, 1},
		{"coefficient flips choice", ABToCD{NuA: 1, NuB: 3, NuC: 1, NuD: 1}, Amounts{A: 1, B: 2}, B, 2.0 / 3},
		{"tie goes to A", ABToC{NuA: 2, NuB: 1, NuC: 1}, Amounts{A: 2, B: 1}, A, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lim, err := LimitingReactant(Reaction{Scheme: tt.scheme, Initial: tt.initial})
			require.NoError(t, err)
			assert.Equal(t, tt.want, lim.Species)
			assert.InDelta(t, tt.value, lim.Value, 1e-12)
		})
	}
}

func TestLimitingReactant_SwapSymmetry(t *testing.T) {
	for _, pair := range [][2]float64{{1, 3}, {3, 1}, {0.2, 0.7}} {
		forward, err := LimitingReactant(Reaction{
			Scheme:  ABToC{NuA: 1, NuB: 2, NuC: 1},
			Initial: Amounts{A: pair[0], B: pair[1]},
		})
		require.NoError(t, err)

		swapped, err := LimitingReactant(Reaction{
			Scheme:  ABToC{NuA: 2, NuB: 1, NuC: 1},
			Initial: Amounts{A: pair[1], B: pair[0]},
		})
		require.NoError(t, err)

		assert.InDelta(t, forward.Value, swapped.Value, 1e-12)
		assert.Equal(t, forward.Initial, swapped.Initial)
		assert.NotEqual(t, forward.Species, swapped.Species)
	}
}

func TestLimitingReactant_ZeroLimitingAmount(t *testing.T) {
	_, err := LimitingReactant(Reaction{Scheme: ABToC{NuA: 1, NuB: 1, NuC: 1}, Initial: Amounts{A: 1}})
	require.Error(t, err)
	assert.True(t, calcerr.Is(err, calcerr.KindDomain))
	assert.Contains(t, err.Error(), "initial.b")
}

func TestLimitingReactant_NegativeAmount(t *testing.T) {
	_, err := LimitingReactant(Reaction{Scheme: AToB{NuA: 1, NuB: 1}, Initial: Amounts{A: 1, C: -1}})
	assert.True(t, calcerr.Is(err, calcerr.KindDomain))
}

func TestLimitingReactant_NonPositiveCoefficient(t *testing.T) {
	tests := []struct {
		name   string
		scheme Scheme
		field  string
	}{
		{"zero reactant", ABToC{NuA: 0, NuB: 1, NuC: 1}, "stoichiometry.a"},
		{"negative reactant", ABToCD{NuA: 1, NuB: -2, NuC: 1, NuD: 1}, "stoichiometry.b"},
		{"zero product", AToBC{NuA: 1, NuB: 1}, "stoichiometry.c"},
		{"unset scheme", AToB{}, "stoichiometry.a"},
		{"infinite product", AToB{NuA: 1, NuB: math.Inf(1)}, "stoichiometry.b"},
		{"NaN reactant", ABToC{NuA: 1, NuB: math.NaN(), NuC: 1}, "stoichiometry.b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LimitingReactant(Reaction{Scheme: tt.scheme, Initial: Amounts{A: 1, B: 1}})
			require.Error(t, err)
			assert.True(t, calcerr.Is(err, calcerr.KindInvalidStoichiometry))

			var ce *calcerr.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestExtents_NonPositiveCoefficient(t *testing.T) {
	r := Reaction{Scheme: ABToC{NuA: 0, NuB: 1, NuC: 1}, Initial: Amounts{A: 1, B: 1}}

	ext, err := Extents(r, 0.5)
	require.Error(t, err)
	assert.Nil(t, ext)
	assert.True(t, calcerr.Is(err, calcerr.KindInvalidStoichiometry))

	_, err = FinalAmounts(r, 0.5)
	assert.True(t, calcerr.Is(err, calcerr.KindInvalidStoichiometry))
}

func TestExtents_SingleReactant(t *testing.T) {
	r := Reaction{Scheme: AToBC{NuA: 1, NuB: 2, NuC: 1}, Initial: Amounts{A: 2}}

	ext, err := Extents(r, 0.5)
	require.NoError(t, err)
	assert.Len(t, ext, 3)
	assert.InDelta(t, -1.0, ext[A], 1e-12)
	assert.InDelta(t, 2.0, ext[B], 1e-12)
	assert.InDelta(t, 1.0, ext[C], 1e-12)

	_, hasD := ext[D]
	assert.False(t, hasD)
}

func TestExtents_BLimiting(t *testing.T) {
	// B runs out first: 1 kmol/m³ of B at ν=2 supports 0.5 of A at ν=1.
	r := Reaction{Scheme: ABToCD{NuA: 1, NuB: 2, NuC: 1, NuD: 3}, Initial: Amounts{A: 5, B: 1}}

	ext, err := Extents(r, 0.8)
	require.NoError(t, err)
	assert.InDelta(t, -0.4, ext[A], 1e-12)
	assert.InDelta(t, -0.8, ext[B], 1e-12)
	assert.InDelta(t, 0.4, ext[C], 1e-12)
	assert.InDelta(t, 1.2, ext[D], 1e-12)

	final, err := FinalAmounts(r, 0.8)
	require.NoError(t, err)
	assert.InDelta(t, 4.6, final[A], 1e-12)
	assert.InDelta(t, 0.2, final[B], 1e-12)
	assert.InDelta(t, 0.4, final[C], 1e-12)
}

func TestExtents_ConversionRange(t *testing.T) {
	r := Reaction{Scheme: AToB{NuA: 1, NuB: 1}, Initial: Amounts{A: 1}}

	for _, x := range []float64{-0.1, 1, 1.5} {
		_, err := Extents(r, x)
		require.Error(t, err, "x=%g", x)
		assert.True(t, calcerr.Is(err, calcerr.KindInvalidStoichiometry))
	}

	ext, err := Extents(r, 0)
	require.NoError(t, err)
	assert.Zero(t, ext[A])
}
