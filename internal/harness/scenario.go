package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario. Scenarios compile a
// rule set, run a list of input lines through it, and assert on the
// rewritten text and the token lattice of every line.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules holds inline rule text. Exactly one of Rules and RuleFile
	// must be set.
	Rules string `yaml:"rules,omitempty"`

	// RuleFile is a path to a rule file, relative to the scenario file
	// unless absolute.
	RuleFile string `yaml:"rule_file,omitempty"`

	// Directory is the search directory for external modules. Relative
	// paths resolve against the scenario file location.
	Directory string `yaml:"directory,omitempty"`

	// Active names the external modules to activate before running.
	Active []string `yaml:"active,omitempty"`

	// Items are the input lines with their expected results.
	Items []ItemCase `yaml:"items"`
}

// ItemCase is one input line and its expectations. Output and Tokens
// are each optional; an item with neither still contributes to the
// golden snapshot.
type ItemCase struct {
	// Input is the original text line.
	Input string `yaml:"input"`

	// Output is the expected rewritten text. Validated only when set.
	Output *string `yaml:"output,omitempty"`

	// Tokens is the expected lattice in token order. Validated only
	// when set.
	Tokens []TokenCase `yaml:"tokens,omitempty"`
}

// TokenCase is one expected token with its span into the input.
type TokenCase struct {
	// Form is the token's surface form in the rewritten text.
	Form string `yaml:"form"`

	// From and To are code-point offsets into the ORIGINAL input,
	// half-open. Both -1 means the token has no traceable origin.
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// RuleFile and Directory paths are resolved relative to the scenario
// file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	if scenario.RuleFile != "" && !filepath.IsAbs(scenario.RuleFile) {
		scenario.RuleFile = filepath.Join(base, scenario.RuleFile)
	}
	if scenario.Directory != "" && !filepath.IsAbs(scenario.Directory) {
		scenario.Directory = filepath.Join(base, scenario.Directory)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without path resolution or file
// existence checks. Used for inline scenarios in tests.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields (catches typos)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Rules == "" && s.RuleFile == "" {
		return fmt.Errorf("one of rules or rule_file is required")
	}
	if s.Rules != "" && s.RuleFile != "" {
		return fmt.Errorf("rules and rule_file are mutually exclusive")
	}

	if s.RuleFile != "" {
		if _, err := os.Stat(s.RuleFile); os.IsNotExist(err) {
			return fmt.Errorf("rule file not found: %s", s.RuleFile)
		}
	}

	if len(s.Items) == 0 {
		return fmt.Errorf("items list is required and must be non-empty")
	}

	for i, item := range s.Items {
		for j, tok := range item.Tokens {
			if tok.Form == "" {
				return fmt.Errorf("items[%d].tokens[%d]: form is required", i, j)
			}
		}
	}

	return nil
}
