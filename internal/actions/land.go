package actions

import (
	"context"
	"fmt"
	"time"

	laminarerrors "laminar.dev/laminar/internal/errors"
	"laminar.dev/laminar/internal/export"
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/stack"
)

// LandOptions controls the land action.
type LandOptions struct {
	// NoWait skips the merge-completion poll
	NoWait bool
}

// mergePollInterval is how often the merge poll re-checks PR state.
const mergePollInterval = 5 * time.Second

// LandAction merges the bottom entry's pull request and reconciles the
// local stack afterwards.
func LandAction(ctx context.Context, actx *Context, opts LandOptions) error {
	if git.HasUncommittedChanges(ctx) {
		return fmt.Errorf("%w; commit or stash before landing", laminarerrors.ErrDirtyWorkTree)
	}

	s, err := stack.Discover(ctx, actx.Cfg, actx.Forge)
	if err != nil {
		return err
	}
	bottom := s.Bottom()
	if bottom == nil {
		return fmt.Errorf("no commits between %s and HEAD; nothing to land", actx.Cfg.Base)
	}

	if err := checkLandPreconditions(bottom); err != nil {
		return err
	}

	pr, err := actx.Forge.GetPR(ctx, bottom.PRNumber)
	if err != nil {
		return err
	}

	// The callout describes a stack that stops existing once this lands.
	if stripped := export.StripCallout(pr.Body); stripped != pr.Body {
		if err := actx.Forge.UpdatePR(ctx, pr.Number, github.UpdatePROptions{Body: &stripped}); err != nil {
			return err
		}
	}

	actx.Splog.Info("🛬 Merging PR #%d (%s)...", pr.Number, bottom.Subject)
	if err := actx.Forge.MergePR(ctx, pr.Number); err != nil {
		return err
	}

	if !opts.NoWait {
		if err := waitForMerge(ctx, actx, pr.Number); err != nil {
			return err
		}
	}

	return reconcileLanded(ctx, actx, bottom)
}

func checkLandPreconditions(bottom *stack.Entry) error {
	if bottom.PRNumber == 0 {
		return fmt.Errorf("the bottom commit %s has no PR; run `laminar export` first", bottom.ShortSHA)
	}
	if bottom.Status != stack.StatusUpToDate {
		return fmt.Errorf("the bottom commit %s is not in sync with %s; run `laminar export` first", bottom.ShortSHA, bottom.HeadRef)
	}
	switch bottom.PRState {
	case github.PRStateOpen:
		return nil
	case github.PRStateDraft:
		return fmt.Errorf("PR #%d is a draft; mark it ready for review before landing", bottom.PRNumber)
	case github.PRStateMerged:
		return fmt.Errorf("PR #%d is already merged; run `laminar landed` to reconcile", bottom.PRNumber)
	case github.PRStateClosed:
		return fmt.Errorf("PR #%d is closed", bottom.PRNumber)
	default:
		return fmt.Errorf("PR #%d is in an unexpected state %s", bottom.PRNumber, bottom.PRState)
	}
}

// waitForMerge polls PR state until the forge reports it merged or the
// configured timeout elapses.
func waitForMerge(ctx context.Context, actx *Context, number int) error {
	attempts := actx.Cfg.LandTimeoutMinutes * 12
	if attempts < 1 {
		attempts = 1
	}

	actx.Splog.Info("⏳ Waiting for merge to complete...")
	for attempt := 0; attempt < attempts; attempt++ {
		pr, err := actx.Forge.GetPR(ctx, number)
		if err != nil {
			return err
		}
		if pr.State == github.PRStateMerged {
			actx.Splog.Info("   ✓ Merged")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(mergePollInterval):
		}
	}
	return fmt.Errorf("PR #%d did not merge within %d minutes", number, actx.Cfg.LandTimeoutMinutes)
}

// reconcileLanded removes the landed commit's metadata and tells the
// user how to drop it locally.
func reconcileLanded(ctx context.Context, actx *Context, landed *stack.Entry) error {
	if err := git.RemoveNote(actx.Cfg.NotesRef, landed.SHA); err != nil {
		actx.Splog.Warn("Failed to remove metadata for %s: %v", landed.ShortSHA, err)
	}

	actx.Splog.Newline()
	actx.Splog.Info("✓ Landed %s (PR #%d).", landed.Subject, landed.PRNumber)
	actx.Splog.Tip("Rebase onto the updated base to drop the landed commit: git pull --rebase %s %s", actx.Cfg.Remote, actx.Cfg.Base)
	return nil
}
