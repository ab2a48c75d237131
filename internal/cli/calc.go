package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/roach88/reactorcalc/internal/engine"
	"github.com/roach88/reactorcalc/internal/model"
)

// CalcOptions holds flags for the calc command.
type CalcOptions struct {
	*RootOptions

	Reactor string
	Mode    string
	Scheme  string

	// RequestFile is a YAML or JSON request used as the base for the
	// numeric flags.
	RequestFile string

	// IDGenerator allows overriding the envelope ID generator (for testing).
	IDGenerator engine.IDGenerator
}

// numericFlag binds a float flag to one optional request field.
type numericFlag struct {
	name  string
	usage string
	field func(r *model.Request) **float64
}

func thermalOf(r *model.Request) *model.Thermal {
	if r.Thermal == nil {
		r.Thermal = &model.Thermal{}
	}
	return r.Thermal
}

func arrheniusOf(r *model.Request) *model.Arrhenius {
	if r.Kinetics.Arrhenius == nil {
		r.Kinetics.Arrhenius = &model.Arrhenius{}
	}
	return r.Kinetics.Arrhenius
}

var numericFlags = []numericFlag{
	{"a0", "initial concentration of A", func(r *model.Request) **float64 { return &r.Initial.A }},
	{"b0", "initial concentration of B", func(r *model.Request) **float64 { return &r.Initial.B }},
	{"c0", "initial concentration of C", func(r *model.Request) **float64 { return &r.Initial.C }},
	{"d0", "initial concentration of D", func(r *model.Request) **float64 { return &r.Initial.D }},
	{"nu-a", "stoichiometric coefficient of A", func(r *model.Request) **float64 { return &r.Stoichiometry.A }},
	{"nu-b", "stoichiometric coefficient of B", func(r *model.Request) **float64 { return &r.Stoichiometry.B }},
	{"nu-c", "stoichiometric coefficient of C", func(r *model.Request) **float64 { return &r.Stoichiometry.C }},
	{"nu-d", "stoichiometric coefficient of D", func(r *model.Request) **float64 { return &r.Stoichiometry.D }},
	{"order", "reaction order n", func(r *model.Request) **float64 { return &r.Kinetics.Order }},
	{"k", "rate constant", func(r *model.Request) **float64 { return &r.Kinetics.RateConstant }},
	{"ea", "Arrhenius activation energy", func(r *model.Request) **float64 { return &arrheniusOf(r).ActivationEnergy }},
	{"k0", "Arrhenius pre-exponential factor", func(r *model.Request) **float64 { return &arrheniusOf(r).PreExponential }},
	{"temperature", "Arrhenius reaction temperature", func(r *model.Request) **float64 { return &arrheniusOf(r).Temperature }},
	{"time", "batch time", func(r *model.Request) **float64 { return &r.Geometry.Time }},
	{"volume", "reactor volume", func(r *model.Request) **float64 { return &r.Geometry.Volume }},
	{"flow-rate", "volumetric flow rate", func(r *model.Request) **float64 { return &r.Geometry.FlowRate }},
	{"length", "reactor length", func(r *model.Request) **float64 { return &r.Geometry.Length }},
	{"velocity", "superficial velocity", func(r *model.Request) **float64 { return &r.Geometry.Velocity }},
	{"porosity", "bed porosity", func(r *model.Request) **float64 { return &r.Geometry.Porosity }},
	{"particle-diameter", "catalyst particle diameter", func(r *model.Request) **float64 { return &r.Geometry.ParticleDiameter }},
	{"t0", "initial temperature", func(r *model.Request) **float64 { return &thermalOf(r).InitialTemperature }},
	{"dh", "heat of reaction", func(r *model.Request) **float64 { return &thermalOf(r).HeatOfReaction }},
	{"cp", "heat capacity", func(r *model.Request) **float64 { return &thermalOf(r).HeatCapacity }},
	{"u", "heat transfer coefficient", func(r *model.Request) **float64 { return &thermalOf(r).HeatTransferCoefficient }},
	{"tc", "coolant temperature", func(r *model.Request) **float64 { return &thermalOf(r).CoolantTemperature }},
	{"target", "target conversion (size mode)", func(r *model.Request) **float64 { return &r.TargetConversion }},
}

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalcOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute one request from flags",
		Long: `Compute a single calculation described by flags.

Values are read in the unit system selected by --units. Only the flags that
are set become part of the request; a --request file supplies the rest.

Examples:
  reactorcalc calc --reactor batch --mode conversion --a0 1 --order 1 --k 0.1 --time 10
  reactorcalc calc --reactor cstr --mode size --a0 1 --order 1 --k 0.1 --flow-rate 10 --target 0.5
  reactorcalc calc --request ./batch.yaml --time 20 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Reactor, "reactor", "", "reactor type (batch|cstr|pfr|pbr)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "calculation mode (conversion|rate|temperature|size)")
	cmd.Flags().StringVar(&opts.Scheme, "scheme", "", "reaction scheme (default A_TO_B)")
	cmd.Flags().StringVarP(&opts.RequestFile, "request", "f", "", "YAML or JSON request file")
	for _, nf := range numericFlags {
		cmd.Flags().Float64(nf.name, 0, nf.usage)
	}

	return cmd
}

func runCalc(opts *CalcOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	req, err := opts.buildRequest(cmd.Flags())
	if err != nil {
		_ = formatter.Error(ErrCodeBadFlag, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid request", err)
	}

	var engOpts []engine.EngineOption
	if opts.IDGenerator != nil {
		engOpts = append(engOpts, engine.WithIDGenerator(opts.IDGenerator))
	}
	env := opts.newEngine(engOpts...).Respond(req)

	if formatter.Format == "json" {
		if env.OK() {
			if err := formatter.Success(env); err != nil {
				return err
			}
		} else if err := formatter.Error(string(env.Error.Kind), env.Error.Message, env.Error); err != nil {
			return err
		}
	} else {
		formatter.WriteEnvelope(req.Reactor+" "+req.Mode, env)
	}

	if !env.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", env.Error.Kind, env.Error.Message))
	}
	return nil
}

// buildRequest merges the request file, if any, with the flags that were
// set.
func (o *CalcOptions) buildRequest(fs *pflag.FlagSet) (*model.Request, error) {
	req := &model.Request{}
	if o.RequestFile != "" {
		data, err := os.ReadFile(o.RequestFile)
		if err != nil {
			return nil, fmt.Errorf("reading request file: %w", err)
		}
		// YAML is a superset of JSON, so one strict decoder serves both.
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(req); err != nil {
			return nil, fmt.Errorf("parsing request file %s: %w", o.RequestFile, err)
		}
	}

	if fs.Changed("reactor") {
		req.Reactor = o.Reactor
	}
	if fs.Changed("mode") {
		req.Mode = o.Mode
	}
	if fs.Changed("scheme") {
		req.Scheme = o.Scheme
	}
	if req.Units == "" || fs.Changed("units") {
		req.Units = o.Config.Units
	}

	for _, nf := range numericFlags {
		if !fs.Changed(nf.name) {
			continue
		}
		v, err := fs.GetFloat64(nf.name)
		if err != nil {
			return nil, err
		}
		*nf.field(req) = model.Float(v)
	}

	if req.Reactor == "" || req.Mode == "" {
		return nil, fmt.Errorf("--reactor and --mode are required (or set them in --request)")
	}
	return req, nil
}
