// Package main provides the entry point for the filterphrase CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/filterphrase/cmd/filterphrase/commands"
	"github.com/Sumatoshi-tech/filterphrase/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := commands.NewRootCommand()
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
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "filterphrase %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
