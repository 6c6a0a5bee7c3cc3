// Command fibersched-demo runs a handful of end-to-end scenarios against
// a live Manager, wiring a cobra root command over its subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fibersched-demo",
		Short:         "Scenario runner for the fiber-based job scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	root.PersistentFlags().IntP("threads", "t", 0, "worker thread count (0 = one per core)")

	root.AddCommand(newDAGCmd())
	root.AddCommand(newMutexCmd())
	root.AddCommand(newBenchCmd())
	root.AddCommand(newShutdownCmd())
	return root
}
