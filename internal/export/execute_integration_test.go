package export_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"laminar.dev/laminar/internal/config"
	"laminar.dev/laminar/internal/export"
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/internal/output"
	"laminar.dev/laminar/internal/slot"
	"laminar.dev/laminar/internal/stack"
	"laminar.dev/laminar/testhelpers"
)

func TestExecuteFreshExport(t *testing.T) {
	scene := testhelpers.NewScene(t)
	ctx := context.Background()
	t.Setenv("LAMINAR_LOG_FILE", filepath.Join(t.TempDir(), "laminar.log"))

	cfg := &config.Config{
		Base:     "main",
		Remote:   "origin",
		NotesRef: "refs/notes/laminar",
	}

	require.NoError(t, scene.Repo.AddBareRemote("origin", t.TempDir()))
	require.NoError(t, scene.Repo.CheckoutNewBranch("feature"))

	shaA, err := scene.Repo.Commit("Add parser", "parser.go")
	require.NoError(t, err)
	shaB, err := scene.Repo.Commit("Add evaluator", "eval.go")
	require.NoError(t, err)

	forge := testhelpers.NewFakeForge()

	s, err := stack.Discover(ctx, cfg, forge)
	require.NoError(t, err)
	require.Len(t, s.Entries, 2)

	gitDir, err := git.GetGitDir()
	require.NoError(t, err)
	cache, err := slot.LoadCache(gitDir)
	require.NoError(t, err)

	plan, err := export.BuildPlan(ctx, forge, s, cfg, cache, stack.TwoPhasePlanner{}, stack.RemoteTrackingLookup(cfg.Remote))
	require.NoError(t, err)
	require.Len(t, plan.PRsToCreate, 2)

	executor := &export.Executor{
		Forge: forge,
		Cfg:   cfg,
		Cache: cache,
		Caps:  git.NewCapabilities(),
		Splog: output.NewSplog(false),
	}
	require.NoError(t, executor.Execute(ctx, s, plan, export.Options{}))

	// Both derived branches exist at the local commit SHAs.
	heads, err := git.ListRemoteHeads(ctx, cfg.Remote)
	require.NoError(t, err)
	require.Equal(t, shaA, heads["feature--01"])
	require.Equal(t, shaB, heads["feature--02"])

	// PRs chain bottom onto main, top onto the bottom's branch.
	require.Len(t, forge.Created, 2)
	require.Equal(t, "main", forge.Created[0].Base)
	require.Equal(t, "feature--01", forge.Created[0].Head)
	require.Equal(t, "feature--01", forge.Created[1].Base)
	require.Equal(t, "feature--02", forge.Created[1].Head)

	// Metadata records the slot and the created PR number.
	meta, err := git.ReadMetadata(cfg.NotesRef, shaA)
	require.NoError(t, err)
	require.Equal(t, "01", meta.Slot)
	require.NotNil(t, meta.PR)
	require.Equal(t, 100, *meta.PR)

	// Both PR bodies received the stack callout.
	require.Len(t, forge.BodyBatches, 1)
	require.Len(t, forge.BodyBatches[0], 2)
	require.Contains(t, forge.BodyBatches[0][0].Body, export.CalloutBegin)

	// Re-discovering sees a fully synced stack.
	s2, err := stack.Discover(ctx, cfg, forge)
	require.NoError(t, err)
	for _, entry := range s2.Entries {
		require.Equal(t, stack.StatusUpToDate, entry.Status)
	}
	plan2, err := export.BuildPlan(ctx, forge, s2, cfg, cache, stack.TwoPhasePlanner{}, stack.RemoteTrackingLookup(cfg.Remote))
	require.NoError(t, err)
	require.False(t, plan2.HasActions())
}

func TestExecutePushOnlySkipsForge(t *testing.T) {
	scene := testhelpers.NewScene(t)
	ctx := context.Background()
	t.Setenv("LAMINAR_LOG_FILE", filepath.Join(t.TempDir(), "laminar.log"))

	cfg := &config.Config{
		Base:     "main",
		Remote:   "origin",
		NotesRef: "refs/notes/laminar",
	}

	require.NoError(t, scene.Repo.AddBareRemote("origin", t.TempDir()))
	require.NoError(t, scene.Repo.CheckoutNewBranch("feature"))
	sha, err := scene.Repo.Commit("Add parser", "parser.go")
	require.NoError(t, err)

	forge := testhelpers.NewFakeForge()
	s, err := stack.Discover(ctx, cfg, forge)
	require.NoError(t, err)

	gitDir, err := git.GetGitDir()
	require.NoError(t, err)
	cache, err := slot.LoadCache(gitDir)
	require.NoError(t, err)

	plan, err := export.BuildPlan(ctx, forge, s, cfg, cache, stack.TwoPhasePlanner{}, stack.RemoteTrackingLookup(cfg.Remote))
	require.NoError(t, err)

	executor := &export.Executor{
		Forge: forge,
		Cfg:   cfg,
		Cache: cache,
		Caps:  git.NewCapabilities(),
		Splog: output.NewSplog(false),
	}
	require.NoError(t, executor.Execute(ctx, s, plan, export.Options{PushOnly: true}))

	heads, err := git.ListRemoteHeads(ctx, cfg.Remote)
	require.NoError(t, err)
	require.Equal(t, sha, heads["feature--01"])

	require.Empty(t, forge.Created)
	require.Empty(t, forge.BodyBatches)

	// Push-only writes no metadata; the PR field stays untouched.
	meta, err := git.ReadMetadata(cfg.NotesRef, sha)
	require.NoError(t, err)
	require.Nil(t, meta)
}
