package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/reactorcalc/internal/config"
	"github.com/roach88/reactorcalc/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is resolved from flags, environment and the config file before
	// any subcommand runs.
	Config *config.Config

	// Logger receives engine diagnostics. It discards everything unless
	// --verbose is set.
	Logger *slog.Logger

	viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// NewRootCommand creates the root command for the reactorcalc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: config.New()}
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "reactorcalc",
		Short: "reactorcalc - ideal reactor sizing calculator",
		Long: `Conversion, rate, temperature and sizing calculations for batch, CSTR,
PFR and packed-bed reactors in SI, CGS or Imperial units.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.String(config.KeyFormat, defaults.Format, "output format (json|text)")
	pf.String(config.KeyConfig, "", "path to a YAML config file")
	pf.String(config.KeyUnits, defaults.Units, "default unit system (SI|CGS|Imperial)")
	pf.Int(config.KeyPrecision, defaults.Precision, "significant digits in text output")
	pf.Int(config.KeyWorkers, defaults.Workers, "concurrent calculations in run")

	// Binding only fails for a nil flag, which Bind skips.
	_ = config.Bind(opts.viper, pf)

	// Add subcommands
	cmd.AddCommand(NewCalcCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewUnitsCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))

	return cmd
}

// resolve loads the configuration and installs the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.viper)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if !isValidFormat(cfg.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.Format, ValidFormats))
	}
	o.Config = cfg
	o.Format = cfg.Format

	o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if o.Verbose {
		o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	o.Logger.Debug("configuration resolved",
		"units", cfg.Units,
		"format", cfg.Format,
		"precision", cfg.Precision,
		"workers", cfg.Workers,
	)
	return nil
}

// newEngine returns an engine logging to the command's logger.
func (o *RootOptions) newEngine(opts ...engine.EngineOption) *engine.Engine {
	return engine.New(append([]engine.EngineOption{engine.WithLogger(o.Logger)}, opts...)...)
}

// formatter returns an output formatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		Precision: o.Config.Precision,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
