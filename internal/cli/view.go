package cli

import (
	"github.com/spf13/cobra"

	"laminar.dev/laminar/internal/actions"
)

// newViewCmd creates the view command
func newViewCmd(verbose *bool) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the stack as a timeline with slot, branch, and PR state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := newActionContext(cmd.Context(), *verbose)
			if err != nil {
				return err
			}
			return actions.ViewAction(cmd.Context(), actx, actions.ViewOptions{JSON: jsonOut})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the stack as JSON")

	return cmd
}
