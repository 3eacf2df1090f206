package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gambit",
		Short: "Gambit - Glicko-2 ratings from chess game archives",
		Long: `Gambit reads a PGN archive, rates every decided game in date order
with the Glicko-2 system and prints a leaderboard of the competitors whose
rating deviation is below a confidence threshold.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	cmd.AddCommand(newRankCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gambit version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gambit %s (%s)\n", version, runtime.Version())
		},
	}
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
