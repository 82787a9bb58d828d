package cli

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/spf13/cobra"

	"github.com/roach88/repp/internal/engine"
	"github.com/roach88/repp/internal/store"
	"github.com/roach88/repp/internal/token"
)

// TokenizedItem is one processed line in tokenize output.
type TokenizedItem struct {
	Input  string        `json:"input"`
	Output string        `json:"output"`
	Tokens token.Lattice `json:"tokens"`
}

// TokenizeResult holds the tokenize command's output.
type TokenizeResult struct {
	RuleFile string          `json:"rule_file"`
	RunID    string          `json:"run_id,omitempty"`
	Items    []TokenizedItem `json:"items"`
}

// NewTokenizeCommand creates the tokenize command.
func NewTokenizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &engineOptions{}
	var separator string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "tokenize <rule-file> [input-file]",
		Short: "Rewrite text and split it into provenance-tracked tokens",
		Long: `Apply a rule cascade to every input line, split the result on the
separator pattern, and report each token with the character span it
occupies in the original, unmodified line.

Input comes from the named file, or stdin when omitted or "-". With
--db, the run and its token lattices are also recorded in a SQLite
database for later inspection.

Examples:
  repp tokenize rules/tokenizer.rpp input.txt
  repp tokenize rules/tokenizer.rpp input.txt --separator '[ \t\n]+'
  repp tokenize rules/tokenizer.rpp input.txt --db runs.db`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := ""
			if len(args) == 2 {
				inputPath = args[1]
			}
			return runTokenize(rootOpts, opts, separator, dbPath, args[0], inputPath, cmd)
		},
	}

	addEngineFlags(cmd, opts)
	cmd.Flags().StringVar(&separator, "separator", "", "token separator pattern (overrides the module's declaration)")
	cmd.Flags().StringVar(&dbPath, "db", "", "record the run in this SQLite database")

	return cmd
}

func runTokenize(rootOpts *RootOptions, opts *engineOptions, separator, dbPath, ruleFile, inputPath string, cmd *cobra.Command) error {
	eng, err := loadEngine(ruleFile, opts)
	if err != nil {
		return err
	}

	var callOpts []engine.CallOption
	if separator != "" {
		re, err := regexp2.Compile(separator, regexp2.None)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid separator pattern", err)
		}
		callOpts = append(callOpts, engine.WithTokenPattern(re))
	}

	lines, err := readInput(inputPath, opts.Encoding, cmd)
	if err != nil {
		return err
	}

	result := TokenizeResult{RuleFile: ruleFile}
	for _, line := range lines {
		res := eng.Apply(line)
		result.Items = append(result.Items, TokenizedItem{
			Input:  line,
			Output: res.Output,
			Tokens: eng.Tokenize(line, callOpts...),
		})
	}

	if dbPath != "" {
		runID, err := recordRun(cmd, dbPath, ruleFile, eng, opts.Active, result.Items)
		if err != nil {
			return err
		}
		result.RunID = runID
	}

	if rootOpts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	for i, item := range result.Items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", item.Input)
		for _, tok := range item.Tokens {
			fmt.Fprintf(w, "  %s\n", tok)
		}
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "\nRecorded run %s in %s\n", result.RunID, dbPath)
	}
	return nil
}

// recordRun persists the run and its items in a SQLite store.
func recordRun(cmd *cobra.Command, dbPath, ruleFile string, eng *engine.Engine, active []string, items []TokenizedItem) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	runID := store.UUIDv7Generator{}.Generate()
	run := store.Run{
		ID:       runID,
		RuleFile: ruleFile,
		Info:     eng.Info(),
		Active:   active,
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record run", err)
	}
	for seq, item := range items {
		if _, err := st.WriteItem(ctx, runID, seq, item.Input, item.Output, item.Tokens); err != nil {
			return "", WrapExitError(ExitCommandError, "failed to record item", err)
		}
	}
	return runID, nil
}
