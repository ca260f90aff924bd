package git

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"

	laminarerrors "laminar.dev/laminar/internal/errors"
)

// goGitMu synchronizes go-git object reads to prevent concurrent packfile access
var goGitMu sync.Mutex

// CommitInfo holds the fields of a commit that the stack cares about
type CommitInfo struct {
	SHA      string
	ShortSHA string
	Subject  string
	Body     string
	Message  string
}

// SplitMessage splits a full commit message into subject (first line) and
// body (the remainder with leading blank lines stripped).
func SplitMessage(message string) (subject, body string) {
	message = strings.TrimRight(message, "\n")
	subject, body, _ = strings.Cut(message, "\n")
	subject = strings.TrimSpace(subject)
	body = strings.TrimLeft(body, "\n")
	return subject, body
}

// WalkStackRange returns the commits in base..head ordered bottom-up
// (oldest first). The walk follows parent links from head and stops at
// base; a commit with more than one parent fails with ErrNonLinearHistory.
// An empty slice is returned when head == base.
func WalkStackRange(base, head string) ([]CommitInfo, error) {
	repo, err := GetDefaultRepo()
	if err != nil {
		return nil, err
	}

	headHash, err := resolveRefHash(repo, head)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve head: %w", err)
	}

	baseHash, err := resolveRefHash(repo, base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base: %w", err)
	}

	if headHash == baseHash {
		return []CommitInfo{}, nil
	}

	goGitMu.Lock()
	defer goGitMu.Unlock()

	var commits []CommitInfo
	hash := headHash
	for hash != baseHash {
		commit, err := repo.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
		}

		if commit.NumParents() > 1 {
			return nil, laminarerrors.NewNonLinearHistoryError(commit.Hash.String())
		}

		subject, body := SplitMessage(commit.Message)
		commits = append(commits, CommitInfo{
			SHA:      commit.Hash.String(),
			ShortSHA: commit.Hash.String()[:7],
			Subject:  subject,
			Body:     body,
			Message:  strings.TrimSpace(commit.Message),
		})

		if commit.NumParents() == 0 {
			return nil, fmt.Errorf("base %s is not an ancestor of %s", base, head)
		}
		hash = commit.ParentHashes[0]
	}

	// Reverse to bottom-up order (oldest first)
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}

	return commits, nil
}

// resolveRefHash resolves a ref (branch name, SHA, or ref path) to a hash
func resolveRefHash(repo *Repository, ref string) (plumbing.Hash, error) {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	// 1. Try as a full reference name
	if r, err := repo.Reference(plumbing.ReferenceName(ref), true); err == nil {
		return r.Hash(), nil
	}

	// 2. Try as a local branch
	if r, err := repo.Reference(plumbing.NewBranchReferenceName(ref), true); err == nil {
		return r.Hash(), nil
	}

	// 3. Try ResolveRevision (handles SHAs, short SHAs, and expressions like HEAD~1)
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return *hash, nil
	}

	return plumbing.ZeroHash, fmt.Errorf("failed to resolve ref %s: reference not found", ref)
}
