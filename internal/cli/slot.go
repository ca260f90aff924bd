package cli

import (
	"github.com/spf13/cobra"

	"laminar.dev/laminar/internal/actions"
)

// newSlotCmd creates the slot command
func newSlotCmd(verbose *bool) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "slot <commit> <name>",
		Short: "Assign a slot to a commit",
		Long: `Slot assigns a named slot to a commit, overriding the automatically
allocated two-digit one. The commit can be a SHA or revspec, a 1-based
stack index, or "last" for the top of the stack.

Reassigning a slot that already backs a pull request closes that PR
after confirmation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := newActionContext(cmd.Context(), *verbose)
			if err != nil {
				return err
			}
			return actions.SlotAction(cmd.Context(), actx, actions.SlotOptions{
				CommitRef: args[0],
				Name:      args[1],
				Yes:       yes,
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the reassignment confirmation")

	return cmd
}
