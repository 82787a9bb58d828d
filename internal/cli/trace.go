package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/repp/internal/engine"
)

// TraceStep represents a single operation in the trace timeline.
type TraceStep struct {
	Seq     int    `json:"seq"`
	Op      string `json:"op"`
	Input   string `json:"input"`
	Output  string `json:"output"`
	Applied bool   `json:"applied"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RuleFile string      `json:"rule_file"`
	Input    string      `json:"input"`
	Output   string      `json:"output"`
	Timeline []TraceStep `json:"timeline"`
	Stats    TraceStats  `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalSteps int `json:"total_steps"`
	Applied    int `json:"applied"`
	Skipped    int `json:"skipped"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &engineOptions{}
	var all bool

	cmd := &cobra.Command{
		Use:   "trace <rule-file> <text>",
		Short: "Show every rewrite step for one input",
		Long: `Apply a rule cascade to a single text and show the step-by-step
timeline: each rule that fired, what it received, and what it produced.

By default only applied steps appear. With --all the timeline also
includes the rules that matched nothing.

Examples:
  repp trace rules/tokenizer.rpp "The house (built 1995)."
  repp trace rules/tokenizer.rpp "(42%)," --all
  repp trace rules/tokenizer.rpp "(42%)," --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, opts, all, args[0], args[1], cmd)
		},
	}

	addEngineFlags(cmd, opts)
	cmd.Flags().BoolVar(&all, "all", false, "include steps that matched nothing")

	return cmd
}

func runTrace(rootOpts *RootOptions, opts *engineOptions, all bool, ruleFile, text string, cmd *cobra.Command) error {
	eng, err := loadEngine(ruleFile, opts)
	if err != nil {
		return err
	}

	var callOpts []engine.CallOption
	if all {
		callOpts = append(callOpts, engine.WithVerbose())
	}

	result := TraceResult{
		RuleFile: ruleFile,
		Input:    text,
		Timeline: []TraceStep{},
	}
	for ev := range eng.Trace(text, callOpts...) {
		switch e := ev.(type) {
		case engine.Step:
			result.Timeline = append(result.Timeline, TraceStep{
				Seq:     len(result.Timeline),
				Op:      e.Op.String(),
				Input:   e.Input,
				Output:  e.Output,
				Applied: e.Applied,
			})
		case engine.Result:
			result.Output = e.Output
		}
	}

	result.Stats.TotalSteps = len(result.Timeline)
	for _, step := range result.Timeline {
		if step.Applied {
			result.Stats.Applied++
		} else {
			result.Stats.Skipped++
		}
	}

	if rootOpts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), result)
	}

	return outputTraceText(cmd.OutOrStdout(), result, rootOpts.Verbose)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for: %q\n", result.Input)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no steps)")
	} else {
		for _, step := range result.Timeline {
			formatTraceStep(w, step, verbose)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Result ===")
	fmt.Fprintf(w, "  %q\n", result.Output)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Steps: %d\n", result.Stats.TotalSteps)
	fmt.Fprintf(w, "  Applied:     %d\n", result.Stats.Applied)
	fmt.Fprintf(w, "  Skipped:     %d\n", result.Stats.Skipped)

	return nil
}

// formatTraceStep formats a single timeline step for text output.
func formatTraceStep(w io.Writer, step TraceStep, verbose bool) {
	mark := " "
	if step.Applied {
		mark = "*"
	}
	fmt.Fprintf(w, "  [%d]%s %s\n", step.Seq, mark, step.Op)
	if step.Applied || verbose {
		fmt.Fprintf(w, "       in:  %q\n", step.Input)
		fmt.Fprintf(w, "       out: %q\n", step.Output)
	}
}
