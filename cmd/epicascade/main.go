package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "epicascade",
		Short: "Stochastic SIR cascade simulation over a fixed contact network",
		Long: `epicascade simulates stochastic epidemic cascades: starting from a set of
initially infected nodes, infection spreads probabilistically along the arcs
of a fixed contact network, each newly infected node is infectious for
exactly one time step, and every trial halts on a configurable bound
(elapsed time or total infected count).

The product of a run is the complete event trace of transmission attempts,
including attempts directed at already-recovered nodes.`,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("epicascade version %s\n", version)
		},
	}
}
