package harness

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/reactorcalc/internal/engine"
	"github.com/roach88/reactorcalc/internal/model"
)

// Harness is the test execution engine.
// It runs scenario steps in order with deterministic envelope IDs.
type Harness struct {
	engine *engine.Engine
	logger *slog.Logger
}

// Option configures a scenario run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger handed to the engine. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Create a fresh engine with "<scenario>-<n>" envelope IDs
//  2. Evaluate every step in order, applying the scenario's default units
//  3. Check each step's expect clause
//  4. Evaluate assertions against the collected envelopes
//
// Expectation mismatches are reported in the result, not as an error.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is required")
	}
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Harness{
		engine: engine.New(
			engine.WithIDGenerator(engine.NewSequenceGenerator(scenario.Name)),
			engine.WithLogger(o.logger),
		),
		logger: o.logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		req := step.Request.Clone()
		if req.Units == "" {
			req.Units = scenario.Units
		}

		env := h.engine.Respond(req)
		result.Steps = append(result.Steps, StepResult{Name: step.Name, Envelope: env})

		for _, msg := range checkExpect(step.Expect, env) {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, step.Name, msg))
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario evaluated",
		"scenario", scenario.Name,
		"steps", len(result.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// checkExpect compares an envelope with a step's expectation and returns
// every mismatch.
func checkExpect(exp *Expect, env *model.Envelope) []string {
	if exp == nil {
		if !env.OK() {
			return []string{fmt.Sprintf("unexpected failure: %s: %s", env.Error.Kind, env.Error.Message)}
		}
		return nil
	}

	if exp.Error != "" {
		if env.OK() {
			return []string{fmt.Sprintf("expected %s, got success", exp.Error)}
		}
		var errs []string
		if string(env.Error.Kind) != exp.Error {
			errs = append(errs, fmt.Sprintf("expected %s, got %s: %s", exp.Error, env.Error.Kind, env.Error.Message))
		}
		if exp.Field != "" && env.Error.Field != exp.Field {
			errs = append(errs, fmt.Sprintf("expected failing field %q, got %q", exp.Field, env.Error.Field))
		}
		return errs
	}

	if !env.OK() {
		return []string{fmt.Sprintf("unexpected failure: %s: %s", env.Error.Kind, env.Error.Message)}
	}

	tol := exp.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}

	var errs []string
	for _, name := range sortedKeys(exp.Values) {
		want := exp.Values[name]
		got, ok := env.Values[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("value %s: not in response", name))
			continue
		}
		if !withinRel(want, got, tol) {
			errs = append(errs, fmt.Sprintf("value %s: expected %.10g, got %.10g (rel tol %g)", name, want, got, tol))
		}
	}
	for _, name := range sortedKeys(exp.Units) {
		if got := env.Units[name]; got != exp.Units[name] {
			errs = append(errs, fmt.Sprintf("unit of %s: expected %q, got %q", name, exp.Units[name], got))
		}
	}
	if exp.Limiting != "" && string(env.Limiting) != exp.Limiting {
		errs = append(errs, fmt.Sprintf("limiting reactant: expected %s, got %s", exp.Limiting, env.Limiting))
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
