// Package engine evaluates calculation requests.
//
// The engine is the only entry point the outer surfaces (CLI, scenario
// harness) use. It turns a typed model.Request into a unit-resolved
// model.Envelope:
//
//  1. Validate the request (presence and enumerations)
//  2. Convert every unit-bearing field into SI via the unit registry
//  3. Build typed reactor parameters (scheme, kinetics, geometry, thermal)
//  4. Run the reactor model for the requested mode
//  5. Convert every result field back to the request's unit system and
//     attach unit symbols and labels
//
// Evaluation is pure: the engine holds no per-request state, so one Engine
// may serve any number of goroutines. ComputeBatch evaluates many requests
// concurrently with a bounded worker count.
package engine
