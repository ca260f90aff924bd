package cli

import (
	"github.com/spf13/cobra"

	"laminar.dev/laminar/internal/actions"
)

// newLandCmd creates the land command
func newLandCmd(verbose *bool) *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "land",
		Short: "Merge the bottom pull request of the stack",
		Long: `Land merges the stack's bottom pull request, waits for the merge to
complete, and removes the landed commit's metadata. Rebase onto the
updated base afterwards to drop the landed commit from the stack.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := newActionContext(cmd.Context(), *verbose)
			if err != nil {
				return err
			}
			return actions.LandAction(cmd.Context(), actx, actions.LandOptions{NoWait: noWait})
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Do not wait for the merge to complete")

	return cmd
}
