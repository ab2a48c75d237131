package harness

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Steps    []StepResult
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Steps) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for i, s := range e.Steps {
			if s.Envelope == nil {
				continue
			}
			if s.Envelope.OK() {
				fmt.Fprintf(&buf, "  [%d] %s ok\n", i+1, s.Name)
			} else {
				fmt.Fprintf(&buf, "  [%d] %s %s\n", i+1, s.Name, s.Envelope.Error.Kind)
			}
		}
	}
	return buf.String()
}

// EvaluateAssertions evaluates every assertion against result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertCompare:
			err = assertCompare(result, a)
		case AssertUnit:
			err = assertUnit(result, a)
		case AssertFailureCount:
			err = assertFailureCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// lookup resolves "<step>.<value>" against result.
func lookup(result *Result, ref string) (float64, error) {
	step, value, ok := splitRef(ref)
	if !ok {
		return 0, fmt.Errorf("malformed reference %q", ref)
	}
	s, ok := result.Step(step)
	if !ok {
		return 0, fmt.Errorf("unknown step %q", step)
	}
	if !s.Envelope.OK() {
		return 0, fmt.Errorf("step %q failed: %s", step, s.Envelope.Error.Kind)
	}
	v, ok := s.Envelope.Values[value]
	if !ok {
		return 0, fmt.Errorf("step %q has no value %q", step, value)
	}
	return v, nil
}

// assertCompare checks Left op Right.
func assertCompare(result *Result, a Assertion) error {
	left, err := lookup(result, a.Left)
	if err != nil {
		return err
	}
	right, err := lookup(result, a.Right)
	if err != nil {
		return err
	}

	var ok bool
	switch a.Op {
	case "lt":
		ok = left < right
	case "le":
		ok = left <= right
	case "gt":
		ok = left > right
	case "ge":
		ok = left >= right
	case "eq":
		tol := a.Tolerance
		if tol == 0 {
			tol = DefaultTolerance
		}
		ok = withinRel(left, right, tol)
	default:
		return fmt.Errorf("unknown op %q", a.Op)
	}
	if ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertCompare,
		Expected: fmt.Sprintf("%s %s %s", a.Left, a.Op, a.Right),
		Actual:   fmt.Sprintf("%.10g vs %.10g", left, right),
		Steps:    result.Steps,
	}
}

// assertUnit checks the unit symbol of a value.
func assertUnit(result *Result, a Assertion) error {
	if _, err := lookup(result, a.Value); err != nil {
		return err
	}
	step, value, _ := splitRef(a.Value)
	s, _ := result.Step(step)
	if got := s.Envelope.Units[value]; got != a.Symbol {
		return &AssertionError{
			Type:     AssertUnit,
			Expected: fmt.Sprintf("%s in %q", a.Value, a.Symbol),
			Actual:   fmt.Sprintf("%q", got),
			Steps:    result.Steps,
		}
	}
	return nil
}

// assertFailureCount checks the number of failed steps.
func assertFailureCount(result *Result, a Assertion) error {
	failed := 0
	for _, s := range result.Steps {
		if s.Envelope != nil && !s.Envelope.OK() {
			failed++
		}
	}
	if failed != a.Count {
		return &AssertionError{
			Type:     AssertFailureCount,
			Expected: fmt.Sprintf("%d failed steps", a.Count),
			Actual:   fmt.Sprintf("%d failed steps", failed),
			Steps:    result.Steps,
		}
	}
	return nil
}

func withinRel(want, got, tol float64) bool {
	if math.IsNaN(want) || math.IsNaN(got) {
		return false
	}
	return scalar.EqualWithinAbsOrRel(want, got, tol, tol)
}
