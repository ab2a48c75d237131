// Package harness runs calculation scenarios as executable acceptance
// tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	units: SI                  # default unit system for every step
//	steps:
//	  - name: conversion
//	    request:
//	      reactor: batch
//	      mode: conversion
//	      initial: { a: 1.0 }
//	      kinetics: { order: 1, rate_constant: 0.1 }
//	      geometry: { time: 10 }
//	    expect:
//	      values: { conversion_percent: 63.2120558829 }
//	      tolerance: 1e-9
//	  - name: bad_time
//	    request: { ... }
//	    expect:
//	      error: DomainError
//	      field: geometry.time
//	assertions:
//	  - type: compare
//	    left: cstr.conversion
//	    op: lt
//	    right: pfr.conversion
//	  - type: unit
//	    value: conversion.residence_time
//	    symbol: s
//	  - type: failure_count
//	    count: 1
//
// Steps run in order through a fresh engine whose envelope IDs are
// "<scenario>-1", "<scenario>-2", ..., so results and golden snapshots are
// deterministic.
//
// # Golden Files
//
// RunWithGolden snapshots every step's envelope as canonical JSON with floats
// rounded to SnapshotDigits significant digits. Regenerate with:
//
//	go test ./internal/harness -update
package harness
