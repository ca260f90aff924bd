package git

import (
	"context"
	"fmt"
	"os"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	laminarerrors "laminar.dev/laminar/internal/errors"
)

// Repository wraps a go-git repository
type Repository struct {
	*gogit.Repository
	path string
}

var defaultRepo *Repository

// InitDefaultRepo initializes the default repository from the current directory
func InitDefaultRepo() error {
	if defaultRepo != nil {
		return nil // Already initialized
	}

	repoRoot, err := GetRepoRoot()
	if err != nil {
		return err
	}

	repo, err := OpenRepository(repoRoot)
	if err != nil {
		return err
	}

	defaultRepo = repo
	SetWorkingDir(repoRoot)
	return nil
}

// ResetDefaultRepo clears the cached default repository. Used by tests
// that switch between temporary repositories.
func ResetDefaultRepo() {
	defaultRepo = nil
	SetWorkingDir("")
}

// GetDefaultRepo returns the default repository (must call InitDefaultRepo first)
func GetDefaultRepo() (*Repository, error) {
	if defaultRepo == nil {
		return nil, fmt.Errorf("repository not initialized, call InitDefaultRepo first")
	}
	return defaultRepo, nil
}

// OpenRepository opens a git repository at the given path
func OpenRepository(path string) (*Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", laminarerrors.ErrNotARepository, err)
	}

	return &Repository{
		Repository: repo,
		path:       path,
	}, nil
}

// GetRepoRoot returns the root directory of the Git repository
func GetRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(wd, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", laminarerrors.ErrNotARepository, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}

// GetRepoRootPath returns the root path of an opened repository
func (r *Repository) GetRepoRootPath() string {
	return r.path
}

// GetCurrentBranch returns the current branch name
func GetCurrentBranch() (string, error) {
	repo, err := GetDefaultRepo()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", laminarerrors.ErrNotOnBranch
	}

	return head.Name().Short(), nil
}

// GetRevision resolves a branch name to its commit SHA
func GetRevision(branchName string) (string, error) {
	repo, err := GetDefaultRepo()
	if err != nil {
		return "", err
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branchName), true)
	if err != nil {
		return "", laminarerrors.NewBranchNotFoundError(branchName)
	}
	return ref.Hash().String(), nil
}

// GetRemoteTrackingRevision resolves refs/remotes/<remote>/<branch> to a SHA.
// Returns ("", false) when the tracking ref does not exist.
func GetRemoteTrackingRevision(remote, branchName string) (string, bool) {
	repo, err := GetDefaultRepo()
	if err != nil {
		return "", false
	}

	ref, err := repo.Reference(plumbing.NewRemoteReferenceName(remote, branchName), true)
	if err != nil {
		return "", false
	}
	return ref.Hash().String(), true
}

// GetRemoteDefaultBranch reads the branch refs/remotes/<remote>/HEAD points
// at. Returns ("", false) when the symbolic ref is absent.
func GetRemoteDefaultBranch(remote string) (string, bool) {
	repo, err := GetDefaultRepo()
	if err != nil {
		return "", false
	}

	ref, err := repo.Reference(plumbing.ReferenceName("refs/remotes/"+remote+"/HEAD"), false)
	if err != nil || ref.Type() != plumbing.SymbolicReference {
		return "", false
	}

	target := ref.Target().String()
	prefix := "refs/remotes/" + remote + "/"
	if !strings.HasPrefix(target, prefix) {
		return "", false
	}
	return strings.TrimPrefix(target, prefix), true
}

// ResolveRevision resolves any revspec (SHA, short SHA, branch, HEAD~N) to a full SHA
func ResolveRevision(revspec string) (string, error) {
	repo, err := GetDefaultRepo()
	if err != nil {
		return "", err
	}

	hash, err := repo.Repository.ResolveRevision(plumbing.Revision(revspec))
	if err != nil {
		return "", fmt.Errorf("failed to resolve revision %q: %w", revspec, err)
	}
	return hash.String(), nil
}

// HasUncommittedChanges checks if there are uncommitted changes in the repository
func HasUncommittedChanges(ctx context.Context) bool {
	output, err := RunGitCommandWithContext(ctx, "status", "--porcelain")
	if err != nil {
		return false
	}
	return output != ""
}

// GetGitDir returns the absolute path of the .git directory
func GetGitDir() (string, error) {
	dir, err := RunGitCommand("rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("failed to locate git directory: %w", err)
	}
	return dir, nil
}

// GetRemoteURL returns the configured URL of a remote
func GetRemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := RunGitCommandWithContext(ctx, "config", "--get", "remote."+remote+".url")
	if err != nil {
		return "", fmt.Errorf("failed to get URL for remote %s: %w", remote, err)
	}
	return url, nil
}
