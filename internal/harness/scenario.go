package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/units"
)

// DefaultTolerance is the relative tolerance of expected values when a step
// does not set one.
const DefaultTolerance = 1e-6

// Scenario defines an acceptance scenario: a sequence of calculation
// requests with expected outcomes, plus assertions relating the outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Units is the unit system applied to steps whose request names none.
	Units string `yaml:"units,omitempty"`

	// Steps are evaluated in order.
	Steps []Step `yaml:"steps"`

	// Assertions relate the results of several steps.
	// Supported types: compare, unit, failure_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is a single calculation with its expected outcome.
type Step struct {
	// Name identifies the step within the scenario. Assertions reference
	// values as "<step>.<value>".
	Name string `yaml:"name"`

	Request model.Request `yaml:"request"`

	// Expect specifies the expected outcome.
	// If nil, the step only has to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step: either values or an
// error kind, never both.
type Expect struct {
	// Values are expected response values in the step's unit system.
	// This is a subset match - only specified values are validated.
	Values map[string]float64 `yaml:"values,omitempty"`

	// Tolerance is the relative tolerance of Values.
	// Defaults to DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Units are expected unit symbols, keyed by value name.
	Units map[string]string `yaml:"units,omitempty"`

	// Limiting is the expected limiting reactant.
	Limiting string `yaml:"limiting,omitempty"`

	// Error is the expected failure kind (e.g., "DomainError").
	Error string `yaml:"error,omitempty"`

	// Field is the expected failing field. Only checked with Error.
	Field string `yaml:"field,omitempty"`
}

// Assertion relates the results of a scenario's steps.
type Assertion struct {
	// Type specifies the assertion type:
	// - "compare": Left op Right, within Tolerance for eq
	// - "unit": Value carries unit Symbol
	// - "failure_count": exactly Count steps failed
	Type string `yaml:"type"`

	// Left and Right reference values as "<step>.<value>" (used by compare).
	Left  string `yaml:"left,omitempty"`
	Right string `yaml:"right,omitempty"`

	// Op is one of lt, le, gt, ge, eq (used by compare).
	Op string `yaml:"op,omitempty"`

	// Tolerance is the relative tolerance of eq (used by compare).
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Value references a value as "<step>.<value>" (used by unit).
	Value string `yaml:"value,omitempty"`

	// Symbol is the expected unit symbol (used by unit).
	Symbol string `yaml:"symbol,omitempty"`

	// Count is the expected number of failed steps (used by failure_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCompare      = "compare"
	AssertUnit         = "unit"
	AssertFailureCount = "failure_count"
)

// Comparison operators of compare assertions.
var compareOps = []string{"lt", "le", "gt", "ge", "eq"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs
	// "assertions:", including inside requests.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml scenario in dir, sorted by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if prev, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", p, s.Name, prev)
		}
		names[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Units != "" {
		if _, err := units.ParseSystem(s.Units); err != nil {
			return fmt.Errorf("units: %w", err)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if strings.Contains(step.Name, ".") {
			return fmt.Errorf("steps[%d]: name %q must not contain '.'", i, step.Name)
		}
		if seen[step.Name] {
			return fmt.Errorf("steps[%d]: duplicate step name %q", i, step.Name)
		}
		seen[step.Name] = true

		if step.Request.Reactor == "" || step.Request.Mode == "" {
			return fmt.Errorf("steps[%d]: request.reactor and request.mode are required", i)
		}
		if err := validateExpect(i, step.Expect); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], seen); err != nil {
			return err
		}
	}
	return nil
}

func validateExpect(index int, e *Expect) error {
	if e == nil {
		return nil
	}
	if e.Error != "" {
		if len(e.Values) > 0 || len(e.Units) > 0 || e.Limiting != "" {
			return fmt.Errorf("steps[%d].expect: error cannot be combined with values, units or limiting", index)
		}
		if !slices.Contains(calcerr.Kinds, calcerr.Kind(e.Error)) {
			return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, e.Error)
		}
	} else if e.Field != "" {
		return fmt.Errorf("steps[%d].expect: field requires error", index)
	}
	if e.Tolerance < 0 {
		return fmt.Errorf("steps[%d].expect: tolerance must be non-negative", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	checkRef := func(name, ref string) error {
		step, _, ok := splitRef(ref)
		if !ok {
			return fmt.Errorf("assertions[%d]: %s must be <step>.<value>, got %q", index, name, ref)
		}
		if !steps[step] {
			return fmt.Errorf("assertions[%d]: %s references unknown step %q", index, name, step)
		}
		return nil
	}

	switch a.Type {
	case AssertCompare:
		if err := checkRef("left", a.Left); err != nil {
			return err
		}
		if err := checkRef("right", a.Right); err != nil {
			return err
		}
		if !slices.Contains(compareOps, a.Op) {
			return fmt.Errorf("assertions[%d]: op must be one of %v, got %q", index, compareOps, a.Op)
		}
	case AssertUnit:
		if err := checkRef("value", a.Value); err != nil {
			return err
		}
	case AssertFailureCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for failure_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// splitRef splits "<step>.<value>".
func splitRef(ref string) (step, value string, ok bool) {
	step, value, ok = strings.Cut(ref, ".")
	return step, value, ok && step != "" && value != ""
}
