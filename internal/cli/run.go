package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/reactorcalc/internal/compiler"
	"github.com/roach88/reactorcalc/internal/engine"
	"github.com/roach88/reactorcalc/internal/model"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// IDGenerator allows overriding the envelope ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// NamedEnvelope is a calculation outcome labeled with its request name.
type NamedEnvelope struct {
	Name string `json:"name"`
	*model.Envelope
}

// RunResult holds the outcome of every request in a directory.
type RunResult struct {
	Results []NamedEnvelope `json:"results"`
	Passed  int             `json:"passed"`
	Failed  int             `json:"failed"`
	Total   int             `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <requests-dir>",
		Short: "Compute every request in a directory",
		Long: `Compile the CUE request documents in a directory and compute them.

Requests are evaluated concurrently (--workers) and reported in declaration
order. Requests that name no unit system use --units.

Example:
  reactorcalc run ./requests
  reactorcalc run ./requests --units CGS --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequests(opts, args[0], cmd)
		},
	}

	return cmd
}

func runRequests(opts *RunOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger

	c, err := compiler.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load request schema", err)
	}

	logger.Info("compiling requests", "dir", dir)
	loadResult, loadErrors := LoadRequests(c, dir, LoadModeCollectAll)
	if loadResult == nil {
		return WrapExitError(ExitCommandError, "failed to load requests", loadErrors[0])
	}
	if len(loadErrors) > 0 {
		errs := make([]compiler.ValidationError, 0, len(loadErrors))
		for _, err := range loadErrors {
			errs = append(errs, toValidationError(err))
		}
		return outputValidationErrors(formatter, len(loadResult.Requests), errs)
	}
	logger.Info("requests compiled", "requests", len(loadResult.Requests), "files", loadResult.FileCount)

	reqs := make([]*model.Request, len(loadResult.Requests))
	for i, nr := range loadResult.Requests {
		reqs[i] = nr.Request
		if reqs[i].Units == "" {
			reqs[i].Units = opts.Config.Units
		}
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var engOpts []engine.EngineOption
	if opts.IDGenerator != nil {
		engOpts = append(engOpts, engine.WithIDGenerator(opts.IDGenerator))
	}
	envs := opts.newEngine(engOpts...).ComputeBatch(ctx, reqs, opts.Config.Workers)

	result := RunResult{
		Results: make([]NamedEnvelope, len(envs)),
		Total:   len(envs),
	}
	for i, env := range envs {
		result.Results[i] = NamedEnvelope{Name: loadResult.Requests[i].Name, Envelope: env}
		if env.OK() {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, r := range result.Results {
			formatter.WriteEnvelope(r.Name, r.Envelope)
		}
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintf(formatter.Writer, "Summary: %d succeeded, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if err := ctx.Err(); err != nil {
		return WrapExitError(ExitCommandError, "run interrupted", err)
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d request(s) failed", result.Failed))
	}
	return nil
}
