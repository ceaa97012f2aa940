package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "molabctl",
		Short: "Tooling for the Molab reactive state runtime",
		Long: `molabctl exercises and inspects the Molab reactive state runtime.

Subcommands:

  • bench    stress the state registry and report timings
  • serve    run the registry introspection server with demo state
  • version  print build metadata`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		benchCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
