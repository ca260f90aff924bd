package cli

import (
	"github.com/spf13/cobra"

	"laminar.dev/laminar/internal/actions"
)

// newLandedCmd creates the landed command
func newLandedCmd(verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "landed",
		Short: "Reconcile commits whose pull requests were merged externally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := newActionContext(cmd.Context(), *verbose)
			if err != nil {
				return err
			}
			return actions.LandedAction(cmd.Context(), actx)
		},
	}

	return cmd
}
