package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/repp/internal/compiler"
)

// ValidationIssue is one configuration error found in a rule file.
type ValidationIssue struct {
	Code    string `json:"code"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate <rule-file>",
		Short: "Check a rule file without running it",
		Long: `Parse and compile a rule file, reporting every configuration error
found rather than stopping at the first one.

Checks pattern syntax, replacement group references, group and include
structure, and external module resolution.

Examples:
  repp validate rules/tokenizer.rpp
  repp validate rules/tokenizer.rpp --dir rules
  repp validate rules/tokenizer.rpp --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, dir, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "search directory for external modules (default: rule file's directory)")

	return cmd
}

func runValidate(opts *RootOptions, dir, ruleFile string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Checking %s", ruleFile)

	if dir == "" {
		dir = filepath.Dir(ruleFile)
	}
	errs := compiler.Check(ruleFile, &compiler.Config{Directory: dir})
	if len(errs) == 0 {
		return outputValidateSuccess(formatter)
	}

	issues := make([]ValidationIssue, 0, len(errs))
	for _, err := range errs {
		var ce *compiler.ConfigError
		if errors.As(err, &ce) {
			msg := ce.Message
			if ce.Err != nil {
				msg = fmt.Sprintf("%s: %v", ce.Message, ce.Err)
			}
			issues = append(issues, ValidationIssue{
				Code:    ce.Code,
				File:    ce.File,
				Line:    ce.Line,
				Message: msg,
			})
			continue
		}
		issues = append(issues, ValidationIssue{
			Code:    ErrCodeGeneric,
			Message: err.Error(),
		})
	}

	return outputValidationErrors(formatter, issues)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true}
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ All rules valid")
	return nil
}

// outputValidationErrors outputs the collected validation errors.
func outputValidationErrors(formatter *OutputFormatter, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: issues,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		if issue.File != "" && issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
		} else if issue.File != "" {
			fmt.Fprintf(formatter.Writer, "%s\n", issue.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
