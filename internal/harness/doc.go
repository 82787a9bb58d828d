// Package harness provides conformance testing for rule sets.
//
// The harness compiles a rule set, runs a list of input lines through
// it, and validates the rewritten text and the token lattice of every
// line against the scenario's expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	rules: "!(\\w+)\t[\\1]\n"
//	items:
//	  - input: "abc def"
//	    output: "[abc] [def]"
//	    tokens:
//	      - { form: "[abc]", from: 0, to: 3 }
//	      - { form: "[def]", from: 4, to: 7 }
//
// A scenario names its rule set either inline (rules) or by path
// (rule_file); directory and active configure external module lookup
// and activation. Token from/to offsets are code-point offsets into
// the original input line, before any rewriting.
//
// # Deterministic Testing
//
// Every scenario compiles a fresh engine, so runs are isolated and
// produce identical results across invocations. This makes scenario
// output suitable for golden file comparison via RunWithGolden.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/punct.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !report.Passed() {
//	    for _, msg := range report.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
