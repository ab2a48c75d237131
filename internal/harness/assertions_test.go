package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/model"
)

func okStep(name string, values map[string]float64, units map[string]string) StepResult {
	return StepResult{
		Name: name,
		Envelope: &model.Envelope{
			ID:       name,
			Response: &model.Response{Values: values, Units: units},
		},
	}
}

func failedStep(name string) StepResult {
	return StepResult{
		Name: name,
		Envelope: &model.Envelope{
			ID:    name,
			Error: &model.Failure{Kind: calcerr.KindDomain, Field: "geometry.time", Message: "must be non-negative"},
		},
	}
}

func testResult() *Result {
	r := NewResult()
	r.Steps = []StepResult{
		okStep("cstr", map[string]float64{"conversion": 0.5, "residence_time": 10}, map[string]string{"residence_time": "s"}),
		okStep("pfr", map[string]float64{"conversion": 0.632, "residence_time": 10}, map[string]string{"residence_time": "s"}),
		failedStep("broken"),
	}
	return r
}

func TestEvaluateAssertions_Compare(t *testing.T) {
	tests := []struct {
		name string
		a    Assertion
		pass bool
	}{
		{"lt holds", Assertion{Type: AssertCompare, Left: "cstr.conversion", Op: "lt", Right: "pfr.conversion"}, true},
		{"lt fails", Assertion{Type: AssertCompare, Left: "pfr.conversion", Op: "lt", Right: "cstr.conversion"}, false},
		{"le equal", Assertion{Type: AssertCompare, Left: "cstr.residence_time", Op: "le", Right: "pfr.residence_time"}, true},
		{"gt holds", Assertion{Type: AssertCompare, Left: "pfr.conversion", Op: "gt", Right: "cstr.conversion"}, true},
		{"ge equal", Assertion{Type: AssertCompare, Left: "cstr.residence_time", Op: "ge", Right: "pfr.residence_time"}, true},
		{"eq holds", Assertion{Type: AssertCompare, Left: "cstr.residence_time", Op: "eq", Right: "pfr.residence_time"}, true},
		{"eq fails", Assertion{Type: AssertCompare, Left: "cstr.conversion", Op: "eq", Right: "pfr.conversion"}, false},
		{"eq loose tolerance", Assertion{Type: AssertCompare, Left: "cstr.conversion", Op: "eq", Right: "pfr.conversion", Tolerance: 0.5}, true},
		{"missing value", Assertion{Type: AssertCompare, Left: "cstr.rate", Op: "lt", Right: "pfr.conversion"}, false},
		{"unknown step", Assertion{Type: AssertCompare, Left: "batch.conversion", Op: "lt", Right: "pfr.conversion"}, false},
		{"failed step", Assertion{Type: AssertCompare, Left: "broken.conversion", Op: "lt", Right: "pfr.conversion"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(testResult(), []Assertion{tt.a})
			if tt.pass {
				assert.Empty(t, errs)
			} else {
				require.Len(t, errs, 1)
				assert.Contains(t, errs[0], "assertions[0]")
			}
		})
	}
}

func TestEvaluateAssertions_Unit(t *testing.T) {
	r := testResult()

	assert.Empty(t, EvaluateAssertions(r, []Assertion{{Type: AssertUnit, Value: "cstr.residence_time", Symbol: "s"}}))

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertUnit, Value: "cstr.residence_time", Symbol: "h"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `Expected: cstr.residence_time in "h"`)
	assert.Contains(t, errs[0], `Actual: "s"`)

	// Dimensionless values carry no symbol.
	errs = EvaluateAssertions(r, []Assertion{{Type: AssertUnit, Value: "cstr.conversion", Symbol: "s"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `Actual: ""`)
}

func TestEvaluateAssertions_FailureCount(t *testing.T) {
	r := testResult()
	assert.Empty(t, EvaluateAssertions(r, []Assertion{{Type: AssertFailureCount, Count: 1}}))

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertFailureCount, Count: 0}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Expected: 0 failed steps")
	assert.Contains(t, errs[0], "Actual: 1 failed steps")
	assert.Contains(t, errs[0], "[3] broken DomainError")
	assert.Contains(t, errs[0], "[1] cstr ok")
}

func TestEvaluateAssertions_CollectsAll(t *testing.T) {
	errs := EvaluateAssertions(testResult(), []Assertion{
		{Type: AssertFailureCount, Count: 5},
		{Type: AssertCompare, Left: "cstr.conversion", Op: "lt", Right: "pfr.conversion"},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[0]")
	assert.Contains(t, errs[1], `assertions[2]: unknown assertion type "bogus"`)
}
