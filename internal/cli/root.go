// Package cli wires the cobra commands to the action layer.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "laminar",
		Short: "Laminar turns a branch of stacked commits into chained pull requests",
		Long: `Laminar manages stacked pull requests: every commit between the base
branch and HEAD gets its own remote branch and pull request, chained so
each PR diffs only against the commit below it.

Commit identity survives amends and rebases through slots recorded in
git notes, so re-running export after a rewrite updates the existing
PRs instead of creating new ones.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output")

	rootCmd.AddCommand(newExportCmd(&verbose))
	rootCmd.AddCommand(newViewCmd(&verbose))
	rootCmd.AddCommand(newLandCmd(&verbose))
	rootCmd.AddCommand(newLandedCmd(&verbose))
	rootCmd.AddCommand(newSlotCmd(&verbose))

	return rootCmd
}
