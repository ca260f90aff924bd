package actions

import (
	"context"

	"laminar.dev/laminar/internal/stack"
)

// LandedAction reconciles commits whose PRs were merged outside laminar,
// for example through the forge's web UI. Merged entries are handled
// bottom-up; the first unmerged entry stops the scan since anything
// above it is still in flight.
func LandedAction(ctx context.Context, actx *Context) error {
	s, err := stack.Discover(ctx, actx.Cfg, actx.Forge)
	if err != nil {
		return err
	}
	if s.IsEmpty() {
		actx.Splog.Info("No commits between %s and HEAD.", actx.Cfg.Base)
		return nil
	}

	landed := 0
	for i := range s.Entries {
		entry := &s.Entries[i]
		if !entry.Merged {
			break
		}
		if err := reconcileLanded(ctx, actx, entry); err != nil {
			return err
		}
		landed++
	}

	if landed == 0 {
		actx.Splog.Info("No merged PRs found at the bottom of the stack.")
	}
	return nil
}
