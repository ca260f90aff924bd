// Package export turns a stack snapshot into a plan of pushes and forge
// mutations, then executes it in a fixed phase order.
package export

import (
	"context"

	"laminar.dev/laminar/internal/config"
	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/slot"
	"laminar.dev/laminar/internal/stack"
)

// Options controls what an export run does.
type Options struct {
	// Draft creates new PRs as drafts
	Draft bool
	// PushOnly pushes refs without touching the forge
	PushOnly bool
	// PROnly updates the forge without pushing refs
	PROnly bool
	// Open opens PR URLs in the browser after exporting
	Open bool
	// DryRun renders the plan without executing it
	DryRun bool
	// Verbose includes up-to-date refs in the plan rendering
	Verbose bool
}

// SlotAssignment binds a commit to its slot and derived branch.
type SlotAssignment struct {
	SHA     string
	Slot    string
	HeadRef string
	// IsNew marks slots allocated in this run
	IsNew bool
}

// RefToPush is one derived branch and whether its remote tip is behind.
type RefToPush struct {
	SHA       string
	HeadRef   string
	NeedsPush bool
}

// PRToCreate describes a pull request that does not exist yet.
type PRToCreate struct {
	SHA     string
	HeadRef string
	BaseRef string
	Title   string
	Body    string
}

// PRToUpdate describes an existing pull request and what it needs.
type PRToUpdate struct {
	PRNumber int
	SHA      string
	HeadRef  string
	BaseRef  string
	Title    string
	// NeedsBaseUpdate marks a base drift not already covered by the
	// reorder phases
	NeedsBaseUpdate bool
	// IsReordered marks PRs handled by the phase-1/phase-3 updates
	IsReordered bool
}

// Plan is the full description of an export run. The same plan drives
// both dry-run rendering and execution.
type Plan struct {
	SlotAssignments   []SlotAssignment
	RefsToPush        []RefToPush
	PRsToCreate       []PRToCreate
	PRsToUpdate       []PRToUpdate
	Phase1BaseUpdates []github.BaseUpdate
	Phase3BaseUpdates []github.BaseUpdate
}

// HasActions reports whether executing the plan would change anything.
func (p *Plan) HasActions() bool {
	for _, a := range p.SlotAssignments {
		if a.IsNew {
			return true
		}
	}
	for _, r := range p.RefsToPush {
		if r.NeedsPush {
			return true
		}
	}
	for _, u := range p.PRsToUpdate {
		if u.NeedsBaseUpdate || u.IsReordered {
			return true
		}
	}
	return len(p.PRsToCreate) > 0 ||
		len(p.Phase1BaseUpdates) > 0 ||
		len(p.Phase3BaseUpdates) > 0
}

// BuildPlan computes everything an export run would do. It mutates the
// slot cache in memory (new allocations) but persists nothing; the
// executor owns all side effects.
func BuildPlan(ctx context.Context, forge github.Client, s *stack.Stack, cfg *config.Config, cache *slot.Cache, planner stack.BasePlanner, lookup stack.TrackingRefLookup) (*Plan, error) {
	plan := &Plan{}

	// Slot assignments. Existing slots are re-registered so allocation
	// never collides with them.
	for _, entry := range s.Entries {
		if entry.Slot != "" {
			cache.EnsureSlot(s.CurrentBranch, entry.Slot)
		}
	}
	for _, entry := range s.Entries {
		assignment := SlotAssignment{SHA: entry.SHA}
		if entry.Slot != "" {
			assignment.Slot = entry.Slot
		} else {
			assignment.Slot = cache.Allocate(s.CurrentBranch)
			assignment.IsNew = true
		}
		assignment.HeadRef = slot.DeriveBranchName(s.CurrentBranch, assignment.Slot)
		plan.SlotAssignments = append(plan.SlotAssignments, assignment)
	}

	// Reorder detection against last-observed remote tips, then the
	// two-phase base updates that keep the chain valid through the push.
	reorder := stack.DetectReordering(s.Entries, lookup)
	plan.Phase1BaseUpdates, plan.Phase3BaseUpdates = planner.PlanBaseUpdates(s, reorder)

	// Refs to push: discovery already compared local and remote tips.
	for i, entry := range s.Entries {
		plan.RefsToPush = append(plan.RefsToPush, RefToPush{
			SHA:       entry.SHA,
			HeadRef:   plan.SlotAssignments[i].HeadRef,
			NeedsPush: entry.Status != stack.StatusUpToDate,
		})
	}

	// PR actions, bottom first so each entry can base on the one below.
	reorderedPRs := make(map[int]bool)
	for _, u := range plan.Phase1BaseUpdates {
		reorderedPRs[u.PRNumber] = true
	}
	for _, u := range plan.Phase3BaseUpdates {
		reorderedPRs[u.PRNumber] = true
	}

	for i, entry := range s.Entries {
		assignment := plan.SlotAssignments[i]
		baseRef := cfg.Base
		if i > 0 {
			baseRef = plan.SlotAssignments[i-1].HeadRef
		}

		prNumber := entry.PRNumber
		prBase := entry.PRBase
		if prNumber == 0 {
			// A PR may exist for the derived branch even when the note
			// lost track of it; adopt it instead of creating a duplicate.
			existing, err := forge.FindPRByHead(ctx, assignment.HeadRef)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				prNumber = existing.Number
				prBase = existing.Base
			}
		}

		if prNumber > 0 {
			isReordered := reorderedPRs[prNumber]
			plan.PRsToUpdate = append(plan.PRsToUpdate, PRToUpdate{
				PRNumber:        prNumber,
				SHA:             entry.SHA,
				HeadRef:         assignment.HeadRef,
				BaseRef:         baseRef,
				Title:           entry.Subject,
				NeedsBaseUpdate: prBase != baseRef && !isReordered,
				IsReordered:     isReordered,
			})
		} else {
			plan.PRsToCreate = append(plan.PRsToCreate, PRToCreate{
				SHA:     entry.SHA,
				HeadRef: assignment.HeadRef,
				BaseRef: baseRef,
				Title:   entry.Subject,
				Body:    entry.Body,
			})
		}
	}

	return plan, nil
}
