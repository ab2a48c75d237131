package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/reactorcalc/internal/config"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/units"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Calculation/validation failure (failed requests, scenarios, invalid documents)
	ExitCommandError = 2 // Command error (invalid paths, flags, configuration)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool

	// Precision is the number of significant digits of numbers in text
	// output. Zero means the configured default.
	Precision int

	printer *message.Printer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E201", "DomainError", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == config.FormatJSON {
		return f.encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == config.FormatJSON {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

func (f *OutputFormatter) encode(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Number formats v with the configured significant digits and English digit
// grouping.
func (f *OutputFormatter) Number(v float64) string {
	if f.printer == nil {
		f.printer = message.NewPrinter(language.English)
	}
	prec := f.Precision
	if prec <= 0 {
		prec = config.Defaults().Precision
	}
	return f.printer.Sprintf("%."+strconv.Itoa(prec)+"g", v)
}

// Quantity formats v followed by its unit symbol, if any.
func (f *OutputFormatter) Quantity(v float64, symbol string) string {
	if symbol == "" {
		return f.Number(v)
	}
	return f.Number(v) + " " + symbol
}

// WriteEnvelope writes one calculation outcome in text form: a header line,
// then one labeled line per value in display order.
func (f *OutputFormatter) WriteEnvelope(name string, env *model.Envelope) {
	w := f.Writer
	if !env.OK() {
		fmt.Fprintf(w, "✗ %s\n", name)
		if env.Error.Field != "" {
			fmt.Fprintf(w, "  %s (%s): %s\n", env.Error.Kind, env.Error.Field, env.Error.Message)
		} else {
			fmt.Fprintf(w, "  %s: %s\n", env.Error.Kind, env.Error.Message)
		}
		return
	}

	fmt.Fprintf(w, "✓ %s (%s %s, %s)\n", name, env.Reactor, env.Mode, env.System)
	for _, key := range env.Keys {
		fmt.Fprintf(w, "  %-42s %s\n", env.Labels[key]+":", f.Quantity(env.Values[key], env.Units[key]))
	}
	if env.Limiting != "" {
		fmt.Fprintf(w, "  %-42s %s\n", "Limiting reactant:", env.Limiting)
	}
	if len(env.Profile) > 0 {
		fmt.Fprintln(w, "  Profile:")
		// Symbols come from the registry; a registered system always has both.
		pos, _ := units.Default.Symbol(env.System, units.Length)
		temp, _ := units.Default.Symbol(env.System, units.Temperature)
		for _, s := range env.Profile {
			fmt.Fprintf(w, "    z = %-14s T = %s\n", f.Quantity(s.Position, pos), f.Quantity(s.Temperature, temp))
		}
	}
}
