package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/repp/internal/token"
)

// Snapshot captures the complete output of a scenario execution in a
// stable JSON shape for golden comparison.
type Snapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Items        []ItemSnapshot `json:"items"`
}

// ItemSnapshot is one input line with its rewritten text and lattice.
type ItemSnapshot struct {
	Input  string        `json:"input"`
	Output string        `json:"output"`
	Tokens token.Lattice `json:"tokens"`
}

// RunWithGolden executes a scenario and compares its output against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation failures in the scenario itself fail the test before the
// golden comparison runs.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	report, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range report.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario.Name, report)
}

// AssertGolden compares an already obtained report against a golden
// file, without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, report *Report) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName}
	for _, item := range report.Items {
		tokens := item.Lattice
		if tokens == nil {
			tokens = token.Lattice{}
		}
		snapshot.Items = append(snapshot.Items, ItemSnapshot{
			Input:  item.Input,
			Output: item.Output,
			Tokens: tokens,
		})
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
