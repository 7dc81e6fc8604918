// Package harness runs scenarios of backend operations against a fresh
// in-memory store and checks their outcomes.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: bebidas_cascade
//	description: "Deleting a section removes its products"
//	setup:
//	  - op: add-rate
//	    args: { usdRate: 38, meterRate: 0.9 }
//	flow:
//	  - op: add-section
//	    args: Bebidas
//	    expect:
//	      status: ok
//	      data: 1
//	  - op: add-product
//	    args: { name: Agua, price: -1, sectionId: 1 }
//	    expect:
//	      status: error
//	      code: VALIDATION
//	assertions:
//	  - type: row_count
//	    table: products
//	    count: 0
//
// Args are passed to the dispatcher exactly as a transport would pass them,
// so bare values ("Bebidas", 3) work where the operation accepts them.
//
// # Assertion Types
//
//   - trace_contains: an operation appears in the trace with matching args
//   - trace_order: operations appear in the given order
//   - trace_count: an operation appears exactly N times
//   - final_state: exactly one table row matches where and has the expected values
//   - row_count: the number of table rows matching where
//
// # Deterministic Testing
//
// Every scenario gets its own in-memory SQLite database and a step clock
// starting at testutil.DefaultEpoch, so order dates and ids are identical
// across runs and traces can be compared against golden files.
package harness
