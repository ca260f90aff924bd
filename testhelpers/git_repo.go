package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitRepo is a real repository on disk driven through the git CLI.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a repository with main as the default branch
// and a test identity configured.
func NewGitRepo(dir string) (*GitRepo, error) {
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "init", dir, "-b", "main")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	repo := &GitRepo{Dir: dir}
	if err := repo.Git("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.Git("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}
	return repo, nil
}

// Git runs a git command in the repository, discarding output.
func (r *GitRepo) Git(args ...string) error {
	_, err := r.GitOutput(args...)
	return err
}

// GitOutput runs a git command and returns its trimmed stdout.
func (r *GitRepo) GitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out)), nil
}

// Commit writes the named file and commits it with the given message.
func (r *GitRepo) Commit(message, fileName string) (string, error) {
	path := filepath.Join(r.Dir, fileName)
	if err := os.WriteFile(path, []byte(message+"\n"), 0o644); err != nil {
		return "", err
	}
	if err := r.Git("add", fileName); err != nil {
		return "", err
	}
	if err := r.Git("commit", "-m", message); err != nil {
		return "", err
	}
	return r.HeadSHA()
}

// Amend rewrites the tip commit, changing its SHA but not its message.
func (r *GitRepo) Amend(fileName, content string) (string, error) {
	path := filepath.Join(r.Dir, fileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	if err := r.Git("add", fileName); err != nil {
		return "", err
	}
	if err := r.Git("commit", "--amend", "--no-edit"); err != nil {
		return "", err
	}
	return r.HeadSHA()
}

// CheckoutNewBranch creates and switches to a branch at HEAD.
func (r *GitRepo) CheckoutNewBranch(name string) error {
	return r.Git("checkout", "-b", name)
}

// HeadSHA returns the full SHA of HEAD.
func (r *GitRepo) HeadSHA() (string, error) {
	return r.GitOutput("rev-parse", "HEAD")
}

// RevParse resolves a revspec to a full SHA.
func (r *GitRepo) RevParse(rev string) (string, error) {
	return r.GitOutput("rev-parse", rev)
}

// AddBareRemote creates a bare repository and registers it as a remote.
func (r *GitRepo) AddBareRemote(name, dir string) error {
	cmd := exec.Command("git", "init", "--bare", dir)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to init bare remote: %w", err)
	}
	return r.Git("remote", "add", name, dir)
}
