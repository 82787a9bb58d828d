package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/repp/internal/compiler"
	"github.com/roach88/repp/internal/engine"
	"github.com/roach88/repp/internal/token"
)

// Report holds the outcome of running one scenario.
type Report struct {
	// Scenario is the scenario name.
	Scenario string

	// Items records the actual output and lattice per input line, in
	// item order.
	Items []ItemResult

	// Errors lists every expectation failure. Empty means the scenario
	// passed.
	Errors []string
}

// ItemResult is the observed result for one input line.
type ItemResult struct {
	Input   string
	Output  string
	Lattice token.Lattice
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool {
	return len(r.Errors) == 0
}

func (r *Report) failf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Harness runs scenarios against freshly compiled engines.
type Harness struct {
	logger *slog.Logger
}

// New builds a harness. A nil logger suppresses run logging.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run compiles the scenario's rule set and executes every item,
// validating expected output text and token lattices.
//
// Each scenario compiles a fresh engine, so runs are isolated and
// repeatable. A compile failure is returned as an error; expectation
// failures land in the report.
func Run(scenario *Scenario) (*Report, error) {
	return New(nil).Run(scenario)
}

// Run compiles and executes one scenario.
func (h *Harness) Run(scenario *Scenario) (*Report, error) {
	eng, err := h.compile(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to compile scenario rules: %w", err)
	}

	report := &Report{Scenario: scenario.Name}
	for i, item := range scenario.Items {
		res := eng.Apply(item.Input)
		lattice := eng.Tokenize(item.Input)
		report.Items = append(report.Items, ItemResult{
			Input:   item.Input,
			Output:  res.Output,
			Lattice: lattice,
		})

		if item.Output != nil && res.Output != *item.Output {
			report.failf("items[%d]: output = %q, want %q", i, res.Output, *item.Output)
		}
		h.checkTokens(report, i, item.Tokens, lattice)

		h.logger.Info("scenario item executed",
			"scenario", scenario.Name,
			"item", i,
			"input", item.Input,
			"output", res.Output,
			"tokens", len(lattice),
		)
	}

	return report, nil
}

func (h *Harness) checkTokens(report *Report, item int, want []TokenCase, got token.Lattice) {
	if want == nil {
		return
	}
	if len(got) != len(want) {
		report.failf("items[%d]: %d tokens, want %d", item, len(got), len(want))
		return
	}
	for j, exp := range want {
		tok := got[j]
		if tok.Form != exp.Form {
			report.failf("items[%d].tokens[%d]: form = %q, want %q", item, j, tok.Form, exp.Form)
		}
		if tok.Span.From != exp.From || tok.Span.To != exp.To {
			report.failf("items[%d].tokens[%d]: span = [%d,%d), want [%d,%d)",
				item, j, tok.Span.From, tok.Span.To, exp.From, exp.To)
		}
	}
}

func (h *Harness) compile(scenario *Scenario) (*engine.Engine, error) {
	cfg := &compiler.Config{
		Directory: scenario.Directory,
		Active:    scenario.Active,
	}
	if scenario.RuleFile != "" {
		return compiler.LoadFile(scenario.RuleFile, cfg)
	}
	return compiler.Compile([]byte(scenario.Rules), cfg)
}
