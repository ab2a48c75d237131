// Command reactorcalc computes conversion, rate, temperature and sizing for
// ideal chemical reactors.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/reactorcalc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
