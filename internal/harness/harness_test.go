package harness

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactorcalc/internal/model"
)

func TestRun_TestdataScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Steps, len(s.Steps))
		})
	}
}

func TestRun_DeterministicIDs(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "cstr_vs_pfr.yaml"))
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	require.Len(t, first.Steps, 2)
	assert.Equal(t, "cstr_vs_pfr-1", first.Steps[0].Envelope.ID)
	assert.Equal(t, "cstr_vs_pfr-2", first.Steps[1].Envelope.ID)
	assert.Equal(t, first.Steps[1].Envelope.ID, second.Steps[1].Envelope.ID)
}

func TestRun_ScenarioUnitsApplyToUnsetRequests(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: imperial_default
description: scenario-wide unit system
units: Imperial
steps:
  - name: rate
    request:
      reactor: batch
      mode: rate
      initial: {a: 1}
      kinetics: {order: 1, rate_constant: 0.1}
  - name: rate_si
    request:
      reactor: batch
      mode: rate
      units: SI
      initial: {a: 1}
      kinetics: {order: 1, rate_constant: 0.1}
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	imperial, _ := result.Step("rate")
	assert.Equal(t, "Imperial", string(imperial.Envelope.System))
	assert.Equal(t, "lbmol/ft³", imperial.Envelope.Units["concentration"])

	si, _ := result.Step("rate_si")
	assert.Equal(t, "SI", string(si.Envelope.System))

	// The scenario's own request is left untouched.
	assert.Empty(t, s.Steps[0].Request.Units)
}

func TestRun_ReportsMismatches(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: every expectation is off
steps:
  - name: conv
    request:
      reactor: cstr
      mode: conversion
      initial: {a: 1}
      kinetics: {order: 1, rate_constant: 0.1}
      geometry: {volume: 100, flow_rate: 10}
    expect:
      values: {conversion: 0.6, missing: 1}
      units: {residence_time: h}
      limiting: B
  - name: should_fail
    request:
      reactor: batch
      mode: rate
      initial: {a: 1}
      kinetics: {order: 1, rate_constant: 0.1}
    expect:
      error: DomainError
  - name: wrong_kind
    request:
      reactor: batch
      mode: conversion
      initial: {a: 1}
      kinetics: {order: 1, rate_constant: 0.1}
    expect:
      error: DomainError
      field: geometry.volume
  - name: unexpected
    request:
      reactor: batch
      mode: conversion
      initial: {a: 1}
      kinetics: {order: 1, rate_constant: 0.1}
assertions:
  - type: failure_count
    count: 0
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	joined := func() string {
		var buf bytes.Buffer
		for _, e := range result.Errors {
			buf.WriteString(e)
			buf.WriteByte('\n')
		}
		return buf.String()
	}()
	assert.Contains(t, joined, "value conversion: expected 0.6, got 0.5")
	assert.Contains(t, joined, "value missing: not in response")
	assert.Contains(t, joined, `unit of residence_time: expected "h", got "s"`)
	assert.Contains(t, joined, "limiting reactant: expected B, got A")
	assert.Contains(t, joined, "steps[1] (should_fail): expected DomainError, got success")
	assert.Contains(t, joined, "expected DomainError, got ValidationError")
	assert.Contains(t, joined, `expected failing field "geometry.volume", got "geometry.time"`)
	assert.Contains(t, joined, "steps[3] (unexpected): unexpected failure: ValidationError")
	assert.Contains(t, joined, "assertions[0]")
}

func TestRun_ToleranceOverride(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: loose
description: a loose tolerance accepts a rounded value
steps:
  - name: conv
    request:
      reactor: batch
      mode: conversion
      initial: {a: 1}
      kinetics: {order: 1, rate_constant: 0.1}
      geometry: {time: 10}
    expect:
      values: {conversion: 0.63}
      tolerance: 0.01
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Logger(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "failures.yaml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := Run(s, WithLogger(logger))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	out := buf.String()
	assert.Contains(t, out, "calculation failed")
	assert.Contains(t, out, "id=failures-1")
	assert.Contains(t, out, "scenario evaluated")
}

func TestRun_NilScenario(t *testing.T) {
	_, err := Run(nil)
	require.Error(t, err)
}

func TestResult_Step(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.Steps = append(r.Steps, StepResult{Name: "a", Envelope: &model.Envelope{ID: "x"}})

	s, ok := r.Step("a")
	require.True(t, ok)
	assert.Equal(t, "x", s.Envelope.ID)

	_, ok = r.Step("b")
	assert.False(t, ok)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
