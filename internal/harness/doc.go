// Package harness runs metadata conformance scenarios.
//
// A scenario describes a synthetic runtime (type registry, pallets and
// signed extensions) in YAML. The harness builds the raw tree, encodes it
// to version 14 bytes, runs the full decode pipeline and checks the
// outcome against the scenario's expectations.
//
// # Scenario Format
//
//	name: option_detection
//	description: "Two-variant None/Some enums become Option"
//	types:
//	  - id: 0
//	    primitive: u32
//	  - id: 1
//	    path: [Option]
//	    variant:
//	      - { index: 0, name: None }
//	      - { index: 1, name: Some, fields: [{ type: 0 }] }
//	pallets:
//	  - name: System
//	    index: 0
//	    calls: 1
//	    storage:
//	      - { name: Number, modifier: Default, plain: 0, default: "0x00000000" }
//	extensions:
//	  - { name: CheckNonce, type: 0, additional: 1 }
//	expect:
//	  error: UNRESOLVED_TYPE_REFERENCE   # omit when decode must succeed
//	  type_id: 9
//	assertions:
//	  - type: type_kind
//	    id: 1
//	    kind: Option
//
// Exactly one definition key (primitive, composite, variant, sequence,
// array, tuple, compact, bitsequence) is set per type. Extrinsic and
// runtime type ids default to a unit tuple appended after the declared
// types.
//
// # Assertion Types
//
//   - type_kind: the normalized type id has the given kind
//   - type_shape: subset match of the type's JSON form against expect
//   - extensions: the kept signed extension names, in order
//   - pallet_section: names of a pallet section, in order
//   - cycles: number of recursive type groups
//   - valid: output passes compiler.Validate and the CUE schema
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/option.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
