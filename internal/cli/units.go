package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reactorcalc/internal/units"
)

// UnitsOptions holds flags for the units command.
type UnitsOptions struct {
	*RootOptions
	Order float64 // reaction order of the rate-constant row
}

// UnitTable is the registry table of one unit system.
type UnitTable struct {
	System  units.System  `json:"system"`
	Order   float64       `json:"order"`
	Entries []units.Entry `json:"entries"`
}

// NewUnitsCommand creates the units command.
func NewUnitsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UnitsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "units [system]",
		Short: "Print the unit registry",
		Long: `Print the conversion factor and symbol of every quantity.

A factor converts a value in the quantity's SI unit into the listed system.
Without an argument every system is printed. The rate-constant row depends
on the reaction order (--order).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnits(opts, args, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Order, "order", 1, "reaction order of the rate-constant row")

	return cmd
}

func runUnits(opts *UnitsOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	systems := units.Systems
	if len(args) == 1 {
		sys, err := units.ParseSystem(args[0])
		if err != nil {
			_ = formatter.Error(ErrCodeBadFlag, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid unit system", err)
		}
		systems = []units.System{sys}
	}

	tables := make([]UnitTable, 0, len(systems))
	for _, sys := range systems {
		entries, err := units.Default.Table(sys, opts.Order)
		if err != nil {
			_ = formatter.Error(ErrCodeBadFlag, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid order", err)
		}
		tables = append(tables, UnitTable{System: sys, Order: opts.Order, Entries: entries})
	}

	if formatter.Format == "json" {
		return formatter.Success(tables)
	}

	w := formatter.Writer
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", t.System)
		for _, e := range t.Entries {
			fmt.Fprintf(w, "  %-38s %-22s %s\n", e.Quantity, e.Symbol, formatter.Number(e.Factor.Factor))
		}
	}
	return nil
}
