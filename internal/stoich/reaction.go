package stoich

import (
	"math"
	"slices"
	"strings"

	"github.com/roach88/reactorcalc/internal/calcerr"
)

// Amounts maps species to an amount (concentration). Species that are not
// present are treated as zero.
type Amounts map[Species]float64

// Reaction couples a scheme with the initial amounts of its species.
type Reaction struct {
	Scheme  Scheme
	Initial Amounts
}

// Limiting describes the limiting reactant of a reaction.
type Limiting struct {
	// Species is the limiting reactant.
	Species Species

	// Value is min(C0A/νA, C0B/νB) for two-reactant schemes and C0A
	// otherwise.
	Value float64

	// Initial is the initial amount of the limiting species. Reactor models
	// use it as the reference concentration.
	Initial float64

	// Basis is the limiting amount expressed as A-equivalents: the amount of
	// A that is consumed at full conversion.
	Basis float64
}

// LimitingReactant selects the reactant that runs out first. Ties go to A.
func LimitingReactant(r Reaction) (Limiting, error) {
	if r.Scheme == nil {
		return Limiting{}, calcerr.Validation("scheme", "reaction scheme is required")
	}
	if err := validateScheme(r.Scheme); err != nil {
		return Limiting{}, err
	}
	for _, sp := range AllSpecies {
		v := r.Initial[sp]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Limiting{}, calcerr.Domain(initialField(sp), "initial amount must be a non-negative finite number, got %g", v)
		}
	}

	nuA, _ := r.Scheme.Coefficient(A)
	c0A := r.Initial[A]

	lim := Limiting{Species: A, Value: c0A, Initial: c0A, Basis: c0A}
	if slices.Contains(r.Scheme.Reactants(), B) {
		nuB, _ := r.Scheme.Coefficient(B)
		c0B := r.Initial[B]
		ratioA, ratioB := c0A/nuA, c0B/nuB

		lim = Limiting{Species: A, Value: ratioA, Initial: c0A, Basis: nuA * ratioA}
		if ratioB < ratioA {
			lim = Limiting{Species: B, Value: ratioB, Initial: c0B, Basis: nuA * ratioB}
		}
	}

	if !(lim.Initial > 0) {
		return Limiting{}, calcerr.Domain(initialField(lim.Species),
			"limiting reactant %s must have a positive initial amount, got %g", lim.Species, lim.Initial)
	}
	return lim, nil
}

// Extents returns the signed change of every species the scheme references
// at conversion x of the limiting reactant. Reactants change negatively and
// products positively. Species outside the scheme are omitted.
func Extents(r Reaction, x float64) (Amounts, error) {
	if math.IsNaN(x) || x < 0 || x >= 1 {
		return nil, calcerr.Stoichiometry("conversion", "conversion must lie in [0, 1), got %g", x)
	}
	lim, err := LimitingReactant(r)
	if err != nil {
		return nil, err
	}

	nuA, _ := r.Scheme.Coefficient(A)
	consumedA := lim.Basis * x

	out := make(Amounts, 4)
	for _, sp := range r.Scheme.Reactants() {
		nu, _ := r.Scheme.Coefficient(sp)
		out[sp] = -consumedA * nu / nuA
	}
	for _, sp := range r.Scheme.Products() {
		nu, _ := r.Scheme.Coefficient(sp)
		out[sp] = consumedA * nu / nuA
	}
	return out, nil
}

// FinalAmounts adds the extents at conversion x to the initial amounts of
// every species the scheme references.
func FinalAmounts(r Reaction, x float64) (Amounts, error) {
	ext, err := Extents(r, x)
	if err != nil {
		return nil, err
	}
	out := make(Amounts, len(ext))
	for sp, d := range ext {
		out[sp] = r.Initial[sp] + d
	}
	return out, nil
}

// validateScheme rejects schemes built directly with a coefficient that is
// not a positive finite number.
func validateScheme(s Scheme) error {
	for _, sp := range slices.Concat(s.Reactants(), s.Products()) {
		nu, _ := s.Coefficient(sp)
		if !(nu > 0) || math.IsInf(nu, 0) {
			return calcerr.Stoichiometry(coefficientField(sp), "coefficient must be positive, got %g", nu)
		}
	}
	return nil
}

func coefficientField(sp Species) string {
	return "stoichiometry." + strings.ToLower(string(sp))
}

func initialField(sp Species) string {
	return "initial." + strings.ToLower(string(sp))
}
