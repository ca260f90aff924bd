package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"laminar.dev/laminar/internal/actions"
	"laminar.dev/laminar/internal/export"
)

// newExportCmd creates the export command
func newExportCmd(verbose *bool) *cobra.Command {
	var (
		draft    bool
		pushOnly bool
		prOnly   bool
		open     bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Push every commit in the stack and create or update its pull request",
		Long: `Export walks the commits between the base branch and HEAD, pushes each
one to its derived branch, and creates or updates the chained pull
requests. Commits keep their slots across amends and rebases, so
exporting after a rewrite updates the existing PRs in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pushOnly && prOnly {
				return fmt.Errorf("can't use both --push-only and --pr-only in one command")
			}

			actx, err := newActionContext(cmd.Context(), *verbose)
			if err != nil {
				return err
			}

			return actions.ExportAction(cmd.Context(), actx, export.Options{
				Draft:    draft,
				PushOnly: pushOnly,
				PROnly:   prOnly,
				Open:     open,
				DryRun:   dryRun,
				Verbose:  *verbose,
			})
		},
	}

	cmd.Flags().BoolVar(&draft, "draft", false, "Create new pull requests as drafts")
	cmd.Flags().BoolVar(&pushOnly, "push-only", false, "Push branches without creating or updating pull requests")
	cmd.Flags().BoolVar(&prOnly, "pr-only", false, "Create or update pull requests without pushing branches")
	cmd.Flags().BoolVar(&open, "open", false, "Open each pull request in the browser afterwards")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without doing it")

	return cmd
}
