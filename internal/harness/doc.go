// Package harness runs YAML scenarios that build a library through the
// modeling dispatcher and checks the outcome.
//
// # Scenario Format
//
//	name: diabetes_library
//	description: "What this scenario validates"
//	library: {name: Diabetes, version: 1.0.0}
//	strict: true             # promote recoverable retrieve conditions
//	model: models/fhir       # optional CUE model dir, relative to the file
//	terminology:
//	  code_systems: [{name: SNOMEDCT, url: "http://snomed.info/sct"}]
//	  codes: [{name: Type 2 diabetes, id: "44054006", system: SNOMEDCT}]
//	  value_sets: [{name: Diabetes, url: "http://..."}]
//	requests:
//	  - define: Has Diabetes
//	    template: Condition
//	    path: code
//	    op: "=="
//	    right: {valueset: Diabetes}
//	    expect: {kind: Exists}
//	assertions:
//	  - type: definition_exists
//	    name: Has Diabetes
//
// # Assertion Types
//
//   - definition_exists: Name is defined in the library
//   - terminology_count: the library holds Count terminology definitions
//   - diagnostic: Code was recorded exactly Count times
//   - valid: every definition passes elm.Validate
//
// # Golden Snapshots
//
// RunWithGolden serializes the library identity and terminology, every
// request outcome and every diagnostic as canonical JSON and compares it
// with testdata/golden/{name}.golden.
package harness
