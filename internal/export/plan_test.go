package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"laminar.dev/laminar/internal/config"
	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/slot"
	"laminar.dev/laminar/internal/stack"
	"laminar.dev/laminar/testhelpers"
)

func planConfig() *config.Config {
	return &config.Config{
		Base:     "main",
		Remote:   "origin",
		NotesRef: "refs/notes/laminar",
	}
}

func emptyCache(t *testing.T) *slot.Cache {
	t.Helper()
	cache, err := slot.LoadCache(t.TempDir())
	require.NoError(t, err)
	return cache
}

func noRemoteTips(string) (string, bool) { return "", false }

func buildTestPlan(t *testing.T, forge github.Client, s *stack.Stack, cache *slot.Cache, lookup stack.TrackingRefLookup) *Plan {
	t.Helper()
	plan, err := BuildPlan(context.Background(), forge, s, planConfig(), cache, stack.TwoPhasePlanner{}, lookup)
	require.NoError(t, err)
	return plan
}

func TestBuildPlanFreshStack(t *testing.T) {
	// Two fresh commits, no metadata. Both get slots, both get pushed,
	// and the PRs chain: bottom onto main, top onto the bottom's branch.
	s := &stack.Stack{
		Base:          "main",
		CurrentBranch: "feature",
		Owner:         "acme",
		Repo:          "widgets",
		Entries: []stack.Entry{
			{Index: 1, SHA: "aaa", Subject: "Add parser", Body: "Details.", Status: stack.StatusCreatePR},
			{Index: 2, SHA: "bbb", Subject: "Add evaluator", Status: stack.StatusCreatePR},
		},
	}

	plan := buildTestPlan(t, testhelpers.NewFakeForge(), s, emptyCache(t), noRemoteTips)

	require.Len(t, plan.SlotAssignments, 2)
	require.Equal(t, "01", plan.SlotAssignments[0].Slot)
	require.Equal(t, "02", plan.SlotAssignments[1].Slot)
	require.True(t, plan.SlotAssignments[0].IsNew)
	require.Equal(t, "feature--01", plan.SlotAssignments[0].HeadRef)
	require.Equal(t, "feature--02", plan.SlotAssignments[1].HeadRef)

	require.Len(t, plan.RefsToPush, 2)
	require.True(t, plan.RefsToPush[0].NeedsPush)
	require.True(t, plan.RefsToPush[1].NeedsPush)

	require.Len(t, plan.PRsToCreate, 2)
	require.Empty(t, plan.PRsToUpdate)
	require.Equal(t, "main", plan.PRsToCreate[0].BaseRef)
	require.Equal(t, "feature--01", plan.PRsToCreate[1].BaseRef)
	require.Equal(t, "Add parser", plan.PRsToCreate[0].Title)
	require.Equal(t, "Details.", plan.PRsToCreate[0].Body)

	require.Empty(t, plan.Phase1BaseUpdates)
	require.Empty(t, plan.Phase3BaseUpdates)
	require.True(t, plan.HasActions())
}

func TestBuildPlanReorderedStack(t *testing.T) {
	// Exported A B C reordered to A C B. The two relocated PRs park on
	// A's branch before the push, then the top re-chains after it.
	s := &stack.Stack{
		Base:          "main",
		CurrentBranch: "feature",
		Owner:         "acme",
		Repo:          "widgets",
		Entries: []stack.Entry{
			{Index: 1, SHA: "aaa", Subject: "A", Slot: "01", HeadRef: "feature--01", PRNumber: 101, PRBase: "main", Status: stack.StatusUpToDate},
			{Index: 2, SHA: "ccc2", Subject: "C", Slot: "03", HeadRef: "feature--03", PRNumber: 103, PRBase: "feature--02", Status: stack.StatusNeedsUpdate},
			{Index: 3, SHA: "bbb2", Subject: "B", Slot: "02", HeadRef: "feature--02", PRNumber: 102, PRBase: "feature--01", Status: stack.StatusNeedsUpdate},
		},
	}
	remoteTips := map[string]string{
		"feature--01": "aaa",
		"feature--02": "bbb",
		"feature--03": "ccc",
	}
	lookup := func(headRef string) (string, bool) {
		sha, ok := remoteTips[headRef]
		return sha, ok
	}

	plan := buildTestPlan(t, testhelpers.NewFakeForge(), s, emptyCache(t), lookup)

	// Slots stay with their commits regardless of position.
	require.Equal(t, "01", plan.SlotAssignments[0].Slot)
	require.Equal(t, "03", plan.SlotAssignments[1].Slot)
	require.Equal(t, "02", plan.SlotAssignments[2].Slot)
	require.False(t, plan.SlotAssignments[0].IsNew)

	require.Equal(t, []github.BaseUpdate{
		{PRNumber: 103, Base: "feature--01"},
		{PRNumber: 102, Base: "feature--01"},
	}, plan.Phase1BaseUpdates)
	require.Equal(t, []github.BaseUpdate{
		{PRNumber: 102, Base: "feature--03"},
	}, plan.Phase3BaseUpdates)

	require.Empty(t, plan.PRsToCreate)
	require.Len(t, plan.PRsToUpdate, 3)
	for _, u := range plan.PRsToUpdate {
		if u.PRNumber == 101 {
			require.False(t, u.IsReordered)
			require.False(t, u.NeedsBaseUpdate)
		} else {
			// Reordered PRs are handled by the two phases, not the
			// regular drift update.
			require.True(t, u.IsReordered)
			require.False(t, u.NeedsBaseUpdate)
		}
	}
}

func TestBuildPlanOnlyStaleEntryNeedsPush(t *testing.T) {
	// Someone force-pushed feature--02 externally; discovery marked only
	// that entry stale. The plan pushes it alone.
	s := &stack.Stack{
		Base:          "main",
		CurrentBranch: "feature",
		Entries: []stack.Entry{
			{Index: 1, SHA: "aaa", Subject: "A", Slot: "01", HeadRef: "feature--01", PRNumber: 101, PRBase: "main", Status: stack.StatusUpToDate},
			{Index: 2, SHA: "bbb", Subject: "B", Slot: "02", HeadRef: "feature--02", PRNumber: 102, PRBase: "feature--01", Status: stack.StatusNeedsUpdate},
			{Index: 3, SHA: "ccc", Subject: "C", Slot: "03", HeadRef: "feature--03", PRNumber: 103, PRBase: "feature--02", Status: stack.StatusUpToDate},
		},
	}
	lookup := func(headRef string) (string, bool) {
		return map[string]string{
			"feature--01": "aaa",
			"feature--02": "bbb",
			"feature--03": "ccc",
		}[headRef], true
	}

	plan := buildTestPlan(t, testhelpers.NewFakeForge(), s, emptyCache(t), lookup)

	var pushed []string
	for _, r := range plan.RefsToPush {
		if r.NeedsPush {
			pushed = append(pushed, r.HeadRef)
		}
	}
	require.Equal(t, []string{"feature--02"}, pushed)
	require.Empty(t, plan.Phase1BaseUpdates)
	require.Empty(t, plan.PRsToCreate)
}

func TestBuildPlanAdoptsExistingPRByHead(t *testing.T) {
	// The note lost the PR number but the derived branch already has an
	// open PR. The plan updates it instead of creating a duplicate.
	forge := testhelpers.NewFakeForge()
	forge.AddPR(77, "feature--01", "main")

	s := &stack.Stack{
		Base:          "main",
		CurrentBranch: "feature",
		Entries: []stack.Entry{
			{Index: 1, SHA: "aaa", Subject: "A", Slot: "01", HeadRef: "feature--01", Status: stack.StatusNeedsUpdate},
		},
	}

	plan := buildTestPlan(t, forge, s, emptyCache(t), noRemoteTips)

	require.Empty(t, plan.PRsToCreate)
	require.Len(t, plan.PRsToUpdate, 1)
	require.Equal(t, 77, plan.PRsToUpdate[0].PRNumber)
	require.False(t, plan.PRsToUpdate[0].NeedsBaseUpdate)
}

func TestBuildPlanBaseDrift(t *testing.T) {
	// The PR's recorded base no longer matches the chain; the plan
	// schedules a plain base update, no reorder phases involved.
	s := &stack.Stack{
		Base:          "main",
		CurrentBranch: "feature",
		Entries: []stack.Entry{
			{Index: 1, SHA: "aaa", Subject: "A", Slot: "01", HeadRef: "feature--01", PRNumber: 101, PRBase: "develop", Status: stack.StatusUpToDate},
		},
	}
	lookup := func(string) (string, bool) { return "aaa", true }

	plan := buildTestPlan(t, testhelpers.NewFakeForge(), s, emptyCache(t), lookup)

	require.Len(t, plan.PRsToUpdate, 1)
	require.True(t, plan.PRsToUpdate[0].NeedsBaseUpdate)
	require.Equal(t, "main", plan.PRsToUpdate[0].BaseRef)
	require.Empty(t, plan.Phase1BaseUpdates)
}

func TestBuildPlanUpToDateStackHasNoActions(t *testing.T) {
	s := &stack.Stack{
		Base:          "main",
		CurrentBranch: "feature",
		Entries: []stack.Entry{
			{Index: 1, SHA: "aaa", Subject: "A", Slot: "01", HeadRef: "feature--01", PRNumber: 101, PRBase: "main", Status: stack.StatusUpToDate},
			{Index: 2, SHA: "bbb", Subject: "B", Slot: "02", HeadRef: "feature--02", PRNumber: 102, PRBase: "feature--01", Status: stack.StatusUpToDate},
		},
	}
	lookup := func(headRef string) (string, bool) {
		return map[string]string{"feature--01": "aaa", "feature--02": "bbb"}[headRef], true
	}

	plan := buildTestPlan(t, testhelpers.NewFakeForge(), s, emptyCache(t), lookup)
	require.False(t, plan.HasActions())
}
