package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	laminarerrors "laminar.dev/laminar/internal/errors"
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/internal/slot"
	"laminar.dev/laminar/internal/stack"
)

// SlotOptions controls the slot action.
type SlotOptions struct {
	// CommitRef selects the commit: a revspec, a 1-based stack index, or "last"
	CommitRef string
	// Name is the slot to assign
	Name string
	// Yes skips the reassignment confirmation
	Yes bool
}

// SlotAction assigns a slot to a commit in the stack. Reassigning a slot
// that already backs a PR closes that PR after confirmation.
func SlotAction(ctx context.Context, actx *Context, opts SlotOptions) error {
	if err := slot.ValidateSlotName(opts.Name); err != nil {
		return err
	}

	s, err := stack.Discover(ctx, actx.Cfg, actx.Forge)
	if err != nil {
		return err
	}
	if s.IsEmpty() {
		return fmt.Errorf("no commits between %s and HEAD", actx.Cfg.Base)
	}

	target, err := resolveStackCommit(s, opts.CommitRef)
	if err != nil {
		return err
	}
	if target.Slot == opts.Name {
		actx.Splog.Info("Commit %s already has slot %s.", target.ShortSHA, opts.Name)
		return nil
	}

	if holder := findSlotHolder(s, opts.Name, target.SHA); holder != nil && holder.PRNumber > 0 {
		if err := closeDisplacedPR(ctx, actx, holder, target, opts); err != nil {
			return err
		}
	}

	gitDir, err := git.GetGitDir()
	if err != nil {
		return err
	}
	cache, err := slot.LoadCache(gitDir)
	if err != nil {
		return err
	}
	cache.MarkUsed(s.CurrentBranch, opts.Name)
	if err := cache.Save(); err != nil {
		return err
	}

	meta := &git.CommitMetadata{Slot: opts.Name}
	if target.PRNumber > 0 {
		pr := target.PRNumber
		meta.PR = &pr
	}
	if err := git.WriteMetadata(actx.Cfg.NotesRef, target.SHA, meta); err != nil {
		return err
	}

	actx.Splog.Info("✓ Assigned slot %s to %s (%s).", opts.Name, target.ShortSHA, target.Subject)
	actx.Splog.Tip("Run `laminar export` to push %s.", slot.DeriveBranchName(s.CurrentBranch, opts.Name))
	return nil
}

// resolveStackCommit accepts "last", a 1-based index, or a revspec that
// resolves to a commit inside the stack.
func resolveStackCommit(s *stack.Stack, ref string) (*stack.Entry, error) {
	if ref == "last" {
		return &s.Entries[len(s.Entries)-1], nil
	}

	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 1 || idx > s.Len() {
			return nil, laminarerrors.NewValidationError("index %d is out of range; the stack has %d commit(s)", idx, s.Len())
		}
		return &s.Entries[idx-1], nil
	}

	sha, err := git.ResolveRevision(ref)
	if err != nil {
		return nil, laminarerrors.NewValidationError("cannot resolve %q to a commit", ref)
	}
	for i := range s.Entries {
		if s.Entries[i].SHA == sha || strings.HasPrefix(s.Entries[i].SHA, ref) {
			return &s.Entries[i], nil
		}
	}
	return nil, laminarerrors.NewValidationError("commit %s is not in the stack between %s and HEAD", ref, s.Base)
}

func findSlotHolder(s *stack.Stack, name, excludeSHA string) *stack.Entry {
	for i := range s.Entries {
		if s.Entries[i].Slot == name && s.Entries[i].SHA != excludeSHA {
			return &s.Entries[i]
		}
	}
	return nil
}

// closeDisplacedPR confirms the reassignment, then comments on and
// closes the PR that was using the slot.
func closeDisplacedPR(ctx context.Context, actx *Context, holder, target *stack.Entry, opts SlotOptions) error {
	actx.Splog.Warn("Slot %s is used by %s (%s), which has PR #%d.", opts.Name, holder.ShortSHA, holder.Subject, holder.PRNumber)

	if !opts.Yes {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Reassign slot %s and close PR #%d?", opts.Name, holder.PRNumber),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("slot reassignment cancelled")
		}
	}

	comment := fmt.Sprintf("Closing: slot %s was reassigned to commit %s.", opts.Name, target.ShortSHA)
	if err := actx.Forge.AddComment(ctx, holder.PRNumber, comment); err != nil {
		return err
	}
	if err := actx.Forge.ClosePR(ctx, holder.PRNumber); err != nil {
		return err
	}

	if err := git.RemoveNote(actx.Cfg.NotesRef, holder.SHA); err != nil {
		actx.Splog.Warn("Failed to remove metadata for %s: %v", holder.ShortSHA, err)
	}

	actx.Splog.Info("   Closed PR #%d.", holder.PRNumber)
	return nil
}
