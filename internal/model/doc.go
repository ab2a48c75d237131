// Package model defines the request and result types exchanged between the
// calculation engine and its callers.
//
// A Request is the typed form of a calculation: every outer surface (CUE
// documents, YAML scenarios, CLI flags) decodes into one before calling the
// engine. Results are a closed set of variants that expose their numeric
// outputs as Fields tagged with a physical quantity, so the engine can
// convert them into the caller's unit system.
//
// Key conventions:
//   - JSON and YAML field names are snake_case
//   - optional numeric inputs are *float64, nil meaning "not supplied"
//   - result values are SI until the engine resolves them into a Response
package model
