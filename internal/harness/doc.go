// Package harness runs verification scenarios against a fresh store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: nid_asymmetry
//	description: "The naive national id form under-matches"
//	fixtures:                 # optional, relative to the scenario file
//	  - ../fixtures/cases.yaml
//	cases:                    # optional inline cases
//	  - code: caseid-3
//	    live_birth: {national_id: T3333333C, age: 3}
//	steps:
//	  - name: subquery finds live birth
//	    query: code-or-nid
//	    criteria: {national_id: T1111111A}
//	    expect_codes: [caseid-1]
//	  - name: naive form is rejected
//	    query: code-or-nid-naive
//	    criteria: {national_id: T1111111A}
//	    expect_error: unreachable
//
// When a scenario names neither fixtures nor cases, the two default cases
// are seeded (caseid-1 live birth, caseid-2 adoptive).
//
// # Steps
//
// Each step builds a named resolver query from its criteria, compiles it in
// the step's mode (strict unless "lenient") and runs it. A step passes when
// its expect_error is a substring of the error, or when there is no error
// and the returned case codes equal expect_codes in any order.
//
// # Deterministic Testing
//
// Every run uses an in-memory SQLite database and a sequence code generator,
// so generated case codes, SQL and results are identical across runs. Golden
// files under testdata/golden hold the SQL compiled for each step.
package harness
