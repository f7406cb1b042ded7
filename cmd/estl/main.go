// Package main provides the entry point for the estl CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snir-david/ESTL/cmd/estl/commands"
	"github.com/snir-david/ESTL/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "estl",
		Short: "ESTL - fixed-capacity container workbench",
		Long: `estl drives the fixed-capacity ordered and hashed containers.

Commands:
  soak      Replay or generate a workload and verify the container against a reference model
  bench     Time every balancing strategy and probing policy at the same capacity`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewSoakCommand())
	rootCmd.AddCommand(commands.NewBenchCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "estl %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
