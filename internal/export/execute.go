package export

import (
	"context"
	"fmt"
	"strings"

	"laminar.dev/laminar/internal/config"
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/output"
	"laminar.dev/laminar/internal/slot"
	"laminar.dev/laminar/internal/stack"
)

// Executor runs an export plan. Phases execute in a fixed order so a
// failure always leaves the remote in a state a re-run can repair.
type Executor struct {
	Forge github.Client
	Cfg   *config.Config
	Cache *slot.Cache
	Caps  *git.Capabilities
	Splog *output.Splog
}

// Execute runs the plan: persist slots and notes, park reordered PRs
// (phase 1), push refs, create and update PRs, finalize bases (phase 3),
// sync callouts, push notes, and optionally open the PRs.
func (e *Executor) Execute(ctx context.Context, s *stack.Stack, plan *Plan, opts Options) error {
	if err := e.persistSlots(s, plan, opts); err != nil {
		return err
	}

	if !opts.PROnly && len(plan.Phase1BaseUpdates) > 0 {
		e.Splog.Info("🔄 Preparing %d PR%s for reorder...", len(plan.Phase1BaseUpdates), plural(len(plan.Phase1BaseUpdates)))
		if err := e.Forge.BatchUpdateBases(ctx, plan.Phase1BaseUpdates); err != nil {
			return err
		}
		e.Splog.Info("   ✓ Ready")
	}

	if !opts.PROnly {
		if err := e.pushRefs(ctx, plan); err != nil {
			// A failed push aborts all forge mutations: the PRs must
			// never get ahead of the refs they describe.
			return err
		}
	}

	if opts.PushOnly {
		return nil
	}

	prURLs, err := e.runPROperations(ctx, s, plan, opts)
	if err != nil {
		return err
	}

	if err := e.finalizeBases(ctx, plan); err != nil {
		return err
	}

	if err := e.syncCallouts(ctx, s); err != nil {
		return err
	}

	e.pushNotes(ctx)

	if opts.Open {
		for _, url := range prURLs {
			if err := openBrowser(url); err != nil {
				e.Splog.Debug("Failed to open %s: %v", url, err)
			}
		}
	}

	return nil
}

// persistSlots saves the slot cache and writes metadata notes for every
// entry. In push-only mode notes are skipped so the PR field is not
// rewritten behind the forge's back.
func (e *Executor) persistSlots(s *stack.Stack, plan *Plan, opts Options) error {
	newCount := 0
	for _, a := range plan.SlotAssignments {
		if a.IsNew {
			newCount++
		}
	}
	if newCount > 0 {
		e.Splog.Info("📦 Assigning %d new slot%s...", newCount, plural(newCount))
	}

	for _, a := range plan.SlotAssignments {
		e.Cache.EnsureSlot(s.CurrentBranch, a.Slot)
	}
	if err := e.Cache.Save(); err != nil {
		return err
	}

	if opts.PushOnly {
		return nil
	}

	for i := range s.Entries {
		entry := &s.Entries[i]
		meta := &git.CommitMetadata{Slot: plan.SlotAssignments[i].Slot}
		if entry.PRNumber > 0 {
			pr := entry.PRNumber
			meta.PR = &pr
		}
		if err := git.WriteMetadata(e.Cfg.NotesRef, entry.SHA, meta); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) pushRefs(ctx context.Context, plan *Plan) error {
	var updates []git.RefUpdate
	for _, r := range plan.RefsToPush {
		if r.NeedsPush {
			updates = append(updates, git.RefUpdate{Name: r.HeadRef, SHA: r.SHA})
		}
	}
	if len(updates) == 0 {
		return nil
	}

	e.Splog.Info("🚀 Pushing %d ref%s...", len(updates), plural(len(updates)))
	if err := git.PushRefs(ctx, e.Cfg.Remote, updates, e.Caps); err != nil {
		return err
	}

	// Record the tips we just wrote so the next reorder detection sees
	// them without a fetch.
	for _, u := range updates {
		if err := git.UpdateRemoteTrackingRef(e.Cfg.Remote, u.Name, u.SHA); err != nil {
			e.Splog.Debug("Failed to update tracking ref for %s: %v", u.Name, err)
		}
	}

	e.Splog.Info("   ✓ Pushed")
	return nil
}

// runPROperations records existing PRs onto the stack, creates missing
// ones, and persists metadata per created PR so a later failure cannot
// orphan a PR number.
func (e *Executor) runPROperations(ctx context.Context, s *stack.Stack, plan *Plan, opts Options) ([]string, error) {
	var prURLs []string

	for _, update := range plan.PRsToUpdate {
		prURLs = append(prURLs, e.prURL(update.PRNumber))
		for i := range s.Entries {
			if s.Entries[i].SHA == update.SHA {
				s.Entries[i].PRNumber = update.PRNumber
				s.Entries[i].HeadRef = update.HeadRef
			}
		}
	}

	if len(plan.PRsToCreate) == 0 {
		return prURLs, nil
	}

	e.Splog.Info("📝 Creating %d PR%s...", len(plan.PRsToCreate), plural(len(plan.PRsToCreate)))

	var created []string
	for _, create := range plan.PRsToCreate {
		body := create.Body
		if body == "" {
			body = " "
		}

		pr, err := e.Forge.CreatePR(ctx, github.CreatePROptions{
			Title: create.Title,
			Body:  body,
			Head:  create.HeadRef,
			Base:  create.BaseRef,
			Draft: opts.Draft,
		})
		if err != nil {
			return nil, err
		}

		created = append(created, fmt.Sprintf("#%d", pr.Number))
		prURLs = append(prURLs, pr.HTMLURL)

		for i := range s.Entries {
			entry := &s.Entries[i]
			if entry.SHA != create.SHA {
				continue
			}
			entry.PRNumber = pr.Number
			entry.HeadRef = create.HeadRef
			entry.PRBody = pr.Body
			if opts.Draft {
				entry.PRState = github.PRStateDraft
			} else {
				entry.PRState = github.PRStateOpen
			}

			meta := &git.CommitMetadata{PR: &pr.Number, Slot: e.slotFor(plan, entry.SHA)}
			if err := git.WriteMetadata(e.Cfg.NotesRef, entry.SHA, meta); err != nil {
				return nil, err
			}
		}
	}

	e.Splog.Info("   ✓ Created %s", strings.Join(created, ", "))
	return prURLs, nil
}

// finalizeBases runs the remaining base updates in one mutation: regular
// drift plus the phase-3 reorder finalization.
func (e *Executor) finalizeBases(ctx context.Context, plan *Plan) error {
	var updates []github.BaseUpdate
	for _, u := range plan.PRsToUpdate {
		if u.NeedsBaseUpdate {
			updates = append(updates, github.BaseUpdate{PRNumber: u.PRNumber, Base: u.BaseRef})
		}
	}
	updates = append(updates, plan.Phase3BaseUpdates...)

	if len(updates) == 0 {
		return nil
	}

	e.Splog.Info("🔗 Updating %d PR base%s...", len(updates), plural(len(updates)))
	if err := e.Forge.BatchUpdateBases(ctx, updates); err != nil {
		return err
	}
	e.Splog.Info("   ✓ Updated")
	return nil
}

// syncCallouts rewrites every PR body with the stack overview. Single-PR
// stacks carry no callout.
func (e *Executor) syncCallouts(ctx context.Context, s *stack.Stack) error {
	if s.Len() <= 1 {
		return nil
	}

	e.Splog.Info("💬 Syncing %d PR descriptions...", s.Len())

	var updates []github.BodyUpdate
	for i, entry := range s.Entries {
		if entry.PRNumber == 0 {
			continue
		}

		callout := GenerateCallout(s.Entries, i+1, s.Owner, s.Repo)
		// Inject into the forge's current description so edits made on
		// the PR page survive; fresh PRs fall back to the commit body.
		existing := entry.PRBody
		if strings.TrimSpace(existing) == "" {
			existing = entry.Body
		}
		body := callout
		if strings.TrimSpace(existing) != "" {
			body = InjectCallout(existing, callout)
		}
		updates = append(updates, github.BodyUpdate{PRNumber: entry.PRNumber, Body: body})
	}

	if err := e.Forge.BatchUpdateBodies(ctx, updates); err != nil {
		return err
	}
	e.Splog.Info("   ✓ Synced")
	return nil
}

// pushNotes shares metadata with other clones. Failure is a warning: the
// export itself has already succeeded.
func (e *Executor) pushNotes(ctx context.Context) {
	e.Splog.Info("☁️  Pushing metadata...")
	if err := git.PushNotes(ctx, e.Cfg.Remote, e.Cfg.NotesRef); err != nil {
		e.Splog.Warn("Failed to push notes: %v", err)
		return
	}
	e.Splog.Info("   ✓ Done")
}

func (e *Executor) prURL(number int) string {
	owner, repo := e.Forge.GetOwnerRepo()
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number)
}

func (e *Executor) slotFor(plan *Plan, sha string) string {
	for _, a := range plan.SlotAssignments {
		if a.SHA == sha {
			return a.Slot
		}
	}
	return ""
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
