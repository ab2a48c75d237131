// Package stoich models single-reaction stoichiometry: the reaction scheme,
// its coefficients, the limiting reactant and per-species extents for a
// given conversion.
package stoich

import (
	"math"
	"strings"

	"github.com/roach88/reactorcalc/internal/calcerr"
)

// Species identifies a participant of a reaction scheme.
type Species string

const (
	A Species = "A"
	B Species = "B"
	C Species = "C"
	D Species = "D"
)

// AllSpecies lists species in display order.
var AllSpecies = []Species{A, B, C, D}

// Kind is the tag of a reaction scheme.
type Kind string

const (
	KindAToB   Kind = "A_TO_B"
	KindAToBC  Kind = "A_TO_B_PLUS_C"
	KindABToC  Kind = "A_PLUS_B_TO_C"
	KindABToCD Kind = "A_PLUS_B_TO_C_PLUS_D"
)

// Kinds lists every scheme tag.
var Kinds = []Kind{KindAToB, KindAToBC, KindABToC, KindABToCD}

// Scheme is a closed sum type over the supported reaction schemes. Each
// variant carries only the stoichiometric coefficients it uses.
type Scheme interface {
	// Kind returns the scheme tag.
	Kind() Kind

	// Coefficient returns ν for species s, and false if the scheme does not
	// reference s.
	Coefficient(s Species) (float64, bool)

	// Reactants lists the consumed species.
	Reactants() []Species

	// Products lists the produced species.
	Products() []Species

	scheme()
}

// AToB is A → B.
type AToB struct{ NuA, NuB float64 }

// AToBC is A → B + C.
type AToBC struct{ NuA, NuB, NuC float64 }

// ABToC is A + B → C.
type ABToC struct{ NuA, NuB, NuC float64 }

// ABToCD is A + B → C + D.
type ABToCD struct{ NuA, NuB, NuC, NuD float64 }

func (AToB) Kind() Kind   { return KindAToB }
func (AToBC) Kind() Kind  { return KindAToBC }
func (ABToC) Kind() Kind  { return KindABToC }
func (ABToCD) Kind() Kind { return KindABToCD }

func (s AToB) Coefficient(sp Species) (float64, bool) {
	switch sp {
	case A:
		return s.NuA, true
	case B:
		return s.NuB, true
	}
	return 0, false
}

func (s AToBC) Coefficient(sp Species) (float64, bool) {
	switch sp {
	case A:
		return s.NuA, true
	case B:
		return s.NuB, true
	case C:
		return s.NuC, true
	}
	return 0, false
}

func (s ABToC) Coefficient(sp Species) (float64, bool) {
	switch sp {
	case A:
		return s.NuA, true
	case B:
		return s.NuB, true
	case C:
		return s.NuC, true
	}
	return 0, false
}

func (s ABToCD) Coefficient(sp Species) (float64, bool) {
	switch sp {
	case A:
		return s.NuA, true
	case B:
		return s.NuB, true
	case C:
		return s.NuC, true
	case D:
		return s.NuD, true
	}
	return 0, false
}

func (AToB) Reactants() []Species   { return []Species{A} }
func (AToBC) Reactants() []Species  { return []Species{A} }
func (ABToC) Reactants() []Species  { return []Species{A, B} }
func (ABToCD) Reactants() []Species { return []Species{A, B} }

func (AToB) Products() []Species   { return []Species{B} }
func (AToBC) Products() []Species  { return []Species{B, C} }
func (ABToC) Products() []Species  { return []Species{C} }
func (ABToCD) Products() []Species { return []Species{C, D} }

func (AToB) scheme()   {}
func (AToBC) scheme()  {}
func (ABToC) scheme()  {}
func (ABToCD) scheme() {}

// ParseKind parses a scheme tag case-insensitively. Lowercase forms such as
// "a_plus_b_to_c" are accepted. An empty tag selects A_TO_B.
func ParseKind(tag string) (Kind, error) {
	norm := strings.ToUpper(strings.TrimSpace(tag))
	if norm == "" {
		return KindAToB, nil
	}
	for _, k := range Kinds {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", calcerr.Validation("scheme", "unknown reaction scheme %q", tag)
}

// Coefficients holds optional stoichiometric coefficients as supplied by a
// caller. Nil entries default to 1.
type Coefficients struct {
	A, B, C, D *float64
}

// NewScheme builds the scheme variant for kind from the supplied
// coefficients. Coefficients of species the scheme does not reference are
// ignored. Fails with InvalidStoichiometry if a used coefficient is not a positive
// finite number.
func NewScheme(kind Kind, nu Coefficients) (Scheme, error) {
	get := func(sp Species, v *float64) (float64, error) {
		if v == nil {
			return 1, nil
		}
		if !(*v > 0) || math.IsInf(*v, 0) {
			return 0, calcerr.Stoichiometry(coefficientField(sp),
				"coefficient must be positive, got %g", *v)
		}
		return *v, nil
	}

	a, err := get(A, nu.A)
	if err != nil {
		return nil, err
	}
	b, err := get(B, nu.B)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindAToB:
		return AToB{NuA: a, NuB: b}, nil
	case KindAToBC:
		c, err := get(C, nu.C)
		if err != nil {
			return nil, err
		}
		return AToBC{NuA: a, NuB: b, NuC: c}, nil
	case KindABToC:
		c, err := get(C, nu.C)
		if err != nil {
			return nil, err
		}
		return ABToC{NuA: a, NuB: b, NuC: c}, nil
	case KindABToCD:
		c, err := get(C, nu.C)
		if err != nil {
			return nil, err
		}
		d, err := get(D, nu.D)
		if err != nil {
			return nil, err
		}
		return ABToCD{NuA: a, NuB: b, NuC: c, NuD: d}, nil
	}
	return nil, calcerr.Validation("scheme", "unknown reaction scheme %q", kind)
}
