package testhelpers

import (
	"os"
	"testing"

	"laminar.dev/laminar/internal/git"
)

// Scene is a temporary repository the process has changed into, with
// the package-global default repo pointed at it. Cleanup restores the
// working directory and resets the default repo.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// NewScene builds a scene with one initial commit on main.
func NewScene(t *testing.T) *Scene {
	t.Helper()

	dir := t.TempDir()
	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	if _, err := repo.Commit("Initial commit", "README.md"); err != nil {
		t.Fatalf("failed to create initial commit: %v", err)
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}

	git.ResetDefaultRepo()
	if err := git.InitDefaultRepo(); err != nil {
		t.Fatalf("failed to init default repo: %v", err)
	}

	t.Cleanup(func() {
		git.ResetDefaultRepo()
		_ = os.Chdir(oldDir)
	})

	return &Scene{Dir: dir, Repo: repo}
}
