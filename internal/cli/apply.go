package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/repp/internal/compiler"
	"github.com/roach88/repp/internal/engine"
)

// engineOptions holds the flags shared by every command that compiles a
// rule file.
type engineOptions struct {
	Directory      string
	Active         []string
	Encoding       string
	IterationLimit int
}

func addEngineFlags(cmd *cobra.Command, o *engineOptions) {
	cmd.Flags().StringVar(&o.Directory, "dir", "", "search directory for external modules (default: rule file's directory)")
	cmd.Flags().StringSliceVar(&o.Active, "active", nil, "external modules to activate")
	cmd.Flags().StringVar(&o.Encoding, "encoding", "", "input character encoding by IANA name (default: UTF-8)")
	cmd.Flags().IntVar(&o.IterationLimit, "iteration-limit", 0, "cap on iterative group passes (0 = unbounded)")
}

// loadEngine compiles the rule file with the shared flags applied.
// Compilation failures are command errors (exit code 2).
func loadEngine(ruleFile string, o *engineOptions) (*engine.Engine, error) {
	dir := o.Directory
	if dir == "" {
		dir = filepath.Dir(ruleFile)
	}
	cfg := &compiler.Config{
		Directory:      dir,
		Active:         o.Active,
		IterationLimit: o.IterationLimit,
	}
	eng, err := compiler.LoadFile(ruleFile, cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to compile rule file", err)
	}
	return eng, nil
}

// ApplyItem is one processed line in apply output.
type ApplyItem struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ApplyResult holds the apply command's output.
type ApplyResult struct {
	RuleFile string      `json:"rule_file"`
	Items    []ApplyItem `json:"items"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &engineOptions{}

	cmd := &cobra.Command{
		Use:   "apply <rule-file> [input-file]",
		Short: "Rewrite text through a rule cascade",
		Long: `Apply a rule cascade to every input line and print the rewritten text.

Input comes from the named file, or stdin when omitted or "-".

Examples:
  repp apply rules/tokenizer.rpp input.txt
  cat input.txt | repp apply rules/tokenizer.rpp
  repp apply rules/tokenizer.rpp input.txt --active quotes,measures
  repp apply rules/tokenizer.rpp latin1.txt --encoding latin1`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := ""
			if len(args) == 2 {
				inputPath = args[1]
			}
			return runApply(rootOpts, opts, args[0], inputPath, cmd)
		},
	}

	addEngineFlags(cmd, opts)

	return cmd
}

func runApply(rootOpts *RootOptions, opts *engineOptions, ruleFile, inputPath string, cmd *cobra.Command) error {
	eng, err := loadEngine(ruleFile, opts)
	if err != nil {
		return err
	}

	lines, err := readInput(inputPath, opts.Encoding, cmd)
	if err != nil {
		return err
	}

	result := ApplyResult{RuleFile: ruleFile}
	for _, line := range lines {
		res := eng.Apply(line)
		result.Items = append(result.Items, ApplyItem{Input: line, Output: res.Output})
	}

	if rootOpts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	for _, item := range result.Items {
		fmt.Fprintln(w, item.Output)
	}
	return nil
}

func readInput(path, encoding string, cmd *cobra.Command) ([]string, error) {
	r, closer, err := openInput(path, encoding, cmd.InOrStdin())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open input", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	lines, err := readLines(r)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return lines, nil
}
