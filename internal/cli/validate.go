package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reactorcalc/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Requests int                        `json:"requests"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <requests-dir>",
		Short: "Validate request documents without computing",
		Long: `Validate CUE request documents without running any calculation.

Checks syntax, the request schema (closed field set, enumerations, numeric
domains) and that every input the reactor type and mode need is present.
Reports every error found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	c, err := compiler.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load request schema", err)
	}

	loadResult, loadErrors := LoadRequests(c, dir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	validationErrors := ValidateRequests(loadResult.Requests)
	for _, err := range loadErrors {
		validationErrors = append(validationErrors, toValidationError(err))
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, len(loadResult.Requests), validationErrors)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Requests: len(loadResult.Requests)})
	}
	fmt.Fprintf(formatter.Writer, "✓ All %d request(s) valid\n", len(loadResult.Requests))
	return nil
}

// ValidateRequests runs the semantic checks on compiled requests. Fields are
// prefixed with the request name.
func ValidateRequests(reqs []compiler.NamedRequest) []compiler.ValidationError {
	var errs []compiler.ValidationError
	for _, r := range reqs {
		for _, e := range compiler.Validate(r.Request) {
			e.Field = compiler.RequestsPath + "." + r.Name + "." + e.Field
			if r.Pos.IsValid() {
				e.Line = r.Pos.Line()
			}
			errs = append(errs, e)
		}
	}
	return errs
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, requests int, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:    false,
				Requests: requests,
				Errors:   errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
