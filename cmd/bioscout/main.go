package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bioscout/internal/version"
)

func main() {
	if err := rootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "bioscout",
		Short:        "Biodiversity map query service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		serveCommand(),
		resolveCommand(),
		extractCommand(),
		exportCommand(),
		versionCommand(),
	)
	return rootCmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bioscout %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
