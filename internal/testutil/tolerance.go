// Package testutil holds helpers shared by the package tests: numeric
// tolerance assertions and builders for the reference calculation requests.
package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats/scalar"
)

// RelTol is the default relative tolerance for unit round trips.
const RelTol = 1e-9

// WithinRel reports whether got equals want within relative tolerance tol.
// Values near zero are compared absolutely against tol.
func WithinRel(want, got, tol float64) bool {
	if math.IsNaN(want) || math.IsNaN(got) {
		return false
	}
	return scalar.EqualWithinAbsOrRel(want, got, tol, tol)
}

// AssertRel fails t unless got equals want within relative tolerance tol.
func AssertRel(t testing.TB, want, got, tol float64, msgAndArgs ...any) bool {
	t.Helper()
	return assert.Truef(t, WithinRel(want, got, tol),
		"not within relative %g: want %.12g, got %.12g %s", tol, want, got, fmt.Sprint(msgAndArgs...))
}
