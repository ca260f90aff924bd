package git_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	laminarerrors "laminar.dev/laminar/internal/errors"
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/testhelpers"
)

func TestWalkStackRange(t *testing.T) {
	scene := testhelpers.NewScene(t)

	require.NoError(t, scene.Repo.CheckoutNewBranch("feature"))
	shaA, err := scene.Repo.Commit("Add parser", "parser.go")
	require.NoError(t, err)
	shaB, err := scene.Repo.Commit("Add evaluator", "eval.go")
	require.NoError(t, err)

	commits, err := git.WalkStackRange("main", "HEAD")
	require.NoError(t, err)
	require.Len(t, commits, 2)

	// Bottom-up order: oldest first.
	require.Equal(t, shaA, commits[0].SHA)
	require.Equal(t, "Add parser", commits[0].Subject)
	require.Equal(t, shaB, commits[1].SHA)
	require.Equal(t, shaB[:7], commits[1].ShortSHA)
}

func TestWalkStackRangeEmptyWhenHeadIsBase(t *testing.T) {
	scene := testhelpers.NewScene(t)
	_ = scene

	commits, err := git.WalkStackRange("main", "HEAD")
	require.NoError(t, err)
	require.Empty(t, commits)
}

func TestWalkStackRangeRejectsMergeCommits(t *testing.T) {
	scene := testhelpers.NewScene(t)

	require.NoError(t, scene.Repo.CheckoutNewBranch("feature"))
	_, err := scene.Repo.Commit("Feature work", "feature.go")
	require.NoError(t, err)

	require.NoError(t, scene.Repo.Git("checkout", "main"))
	_, err = scene.Repo.Commit("Mainline work", "mainline.go")
	require.NoError(t, err)

	require.NoError(t, scene.Repo.Git("checkout", "feature"))
	require.NoError(t, scene.Repo.Git("merge", "main", "--no-edit"))

	_, err = git.WalkStackRange("main", "HEAD")
	require.ErrorIs(t, err, laminarerrors.ErrNonLinearHistory)
}

func TestMetadataRoundTrip(t *testing.T) {
	scene := testhelpers.NewScene(t)
	notesRef := "refs/notes/laminar"

	require.NoError(t, scene.Repo.CheckoutNewBranch("feature"))
	sha, err := scene.Repo.Commit("Add parser", "parser.go")
	require.NoError(t, err)

	pr := 101
	require.NoError(t, git.WriteMetadata(notesRef, sha, &git.CommitMetadata{PR: &pr, Slot: "01"}))

	meta, err := git.ReadMetadata(notesRef, sha)
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.Equal(t, "01", meta.Slot)
	require.NotNil(t, meta.PR)
	require.Equal(t, 101, *meta.PR)
}

func TestReadMetadataMissingNote(t *testing.T) {
	scene := testhelpers.NewScene(t)

	sha, err := scene.Repo.HeadSHA()
	require.NoError(t, err)

	meta, err := git.ReadMetadata("refs/notes/laminar", sha)
	require.NoError(t, err)
	require.Nil(t, meta)
}

func TestReadMetadataHealsConcatenatedNote(t *testing.T) {
	scene := testhelpers.NewScene(t)
	notesRef := "refs/notes/laminar"

	sha, err := scene.Repo.HeadSHA()
	require.NoError(t, err)

	// A bad merge concatenated two metadata objects; the first wins.
	corrupt := `{"pr": 101, "slot": "01"}{"pr": 102, "slot": "02"}`
	require.NoError(t, git.WriteNote(notesRef, sha, corrupt))

	meta, err := git.ReadMetadata(notesRef, sha)
	require.NoError(t, err)
	require.Equal(t, "01", meta.Slot)

	// The recovered object was written back.
	content, found, err := git.ReadNote(notesRef, sha)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"pr": 101, "slot": "01"}`, strings.TrimSpace(content))
}

func TestGetCurrentBranch(t *testing.T) {
	scene := testhelpers.NewScene(t)

	branch, err := git.GetCurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "main", branch)

	require.NoError(t, scene.Repo.CheckoutNewBranch("feature"))
	branch, err = git.GetCurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "feature", branch)
}

func TestGetRevisionUnknownBranch(t *testing.T) {
	testhelpers.NewScene(t)

	_, err := git.GetRevision("no-such-branch")
	require.ErrorIs(t, err, laminarerrors.ErrBranchNotFound)
}

func TestPushRefsAndListRemoteHeads(t *testing.T) {
	scene := testhelpers.NewScene(t)
	ctx := context.Background()

	require.NoError(t, scene.Repo.AddBareRemote("origin", t.TempDir()))
	require.NoError(t, scene.Repo.CheckoutNewBranch("feature"))
	sha, err := scene.Repo.Commit("Add parser", "parser.go")
	require.NoError(t, err)

	updates := []git.RefUpdate{{Name: "feature--01", SHA: sha}}
	require.NoError(t, git.PushRefs(ctx, "origin", updates, git.NewCapabilities()))

	heads, err := git.ListRemoteHeads(ctx, "origin")
	require.NoError(t, err)
	require.Equal(t, sha, heads["feature--01"])
}

func TestEnsureNotesRewriteConfig(t *testing.T) {
	scene := testhelpers.NewScene(t)
	notesRef := "refs/notes/laminar"

	require.NoError(t, git.EnsureNotesRewriteConfig(notesRef))

	ref, err := scene.Repo.GitOutput("config", "--get", "notes.rewriteRef")
	require.NoError(t, err)
	require.Equal(t, notesRef, ref)

	amend, err := scene.Repo.GitOutput("config", "--get", "notes.rewrite.amend")
	require.NoError(t, err)
	require.Equal(t, "true", amend)

	// Idempotent: a second call must not duplicate the multivar.
	require.NoError(t, git.EnsureNotesRewriteConfig(notesRef))
	refs, err := scene.Repo.GitOutput("config", "--get-all", "notes.rewriteRef")
	require.NoError(t, err)
	require.Equal(t, notesRef, refs)
}
