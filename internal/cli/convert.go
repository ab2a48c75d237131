package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/reactorcalc/internal/units"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Quantity string
	From     string
	To       string
	Order    float64
}

// Conversion is the result of converting one value.
type Conversion struct {
	Quantity   units.Quantity `json:"quantity"`
	Value      float64        `json:"value"`
	From       units.System   `json:"from"`
	FromSymbol string         `json:"from_symbol"`
	Result     float64        `json:"result"`
	To         units.System   `json:"to"`
	ToSymbol   string         `json:"to_symbol"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <value>",
		Short: "Convert a value between unit systems",
		Long: `Convert a single value of a quantity from one unit system to another.

Rate constants carry concentration^(1-n)·time⁻¹, so --order is required for
the rate_constant quantity.

Examples:
  reactorcalc convert 1 --quantity concentration --from SI --to CGS
  reactorcalc convert 0.5 --quantity rate_constant --order 2 --from SI --to Imperial`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Quantity, "quantity", "q", "", "quantity to convert (required)")
	cmd.Flags().StringVar(&opts.From, "from", "", "source unit system (default --units)")
	cmd.Flags().StringVar(&opts.To, "to", "", "target unit system (required)")
	cmd.Flags().Float64Var(&opts.Order, "order", 0, "reaction order (rate_constant only)")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runConvert(opts *ConvertOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	fail := func(err error) error {
		_ = formatter.Error(ErrCodeBadFlag, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid conversion", err)
	}

	value, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fail(fmt.Errorf("value %q is not a number", arg))
	}
	q, err := units.ParseQuantity(opts.Quantity)
	if err != nil {
		return fail(err)
	}
	fromName := opts.From
	if fromName == "" {
		fromName = opts.Config.Units
	}
	from, err := units.ParseSystem(fromName)
	if err != nil {
		return fail(err)
	}
	to, err := units.ParseSystem(opts.To)
	if err != nil {
		return fail(err)
	}

	var order []float64
	if cmd.Flags().Changed("order") {
		order = append(order, opts.Order)
	}

	result, err := units.Default.Convert(value, q, from, to, order...)
	if err != nil {
		return fail(err)
	}
	fromSym, err := units.Default.Symbol(from, q, order...)
	if err != nil {
		return fail(err)
	}
	toSym, err := units.Default.Symbol(to, q, order...)
	if err != nil {
		return fail(err)
	}

	c := Conversion{
		Quantity:   q,
		Value:      value,
		From:       from,
		FromSymbol: fromSym,
		Result:     result,
		To:         to,
		ToSymbol:   toSym,
	}
	if formatter.Format == "json" {
		return formatter.Success(c)
	}
	fmt.Fprintf(formatter.Writer, "%s = %s\n", formatter.Quantity(value, fromSym), formatter.Quantity(result, toSym))
	return nil
}
