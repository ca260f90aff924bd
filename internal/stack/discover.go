package stack

import (
	"context"
	"fmt"
	"sync"

	"laminar.dev/laminar/internal/config"
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/slot"
)

// Discover builds the full stack snapshot: the commit walk, metadata from
// git notes, remote branch state, and forge PR state. Remote listing and
// the batched PR fetch run concurrently.
func Discover(ctx context.Context, cfg *config.Config, forge github.Client) (*Stack, error) {
	currentBranch, err := git.GetCurrentBranch()
	if err != nil {
		return nil, err
	}

	owner, repo := forge.GetOwnerRepo()
	s := &Stack{
		Base:          cfg.Base,
		CurrentBranch: currentBranch,
		Owner:         owner,
		Repo:          repo,
	}

	commits, err := git.WalkStackRange(cfg.Base, "HEAD")
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return s, nil
	}

	for idx, commit := range commits {
		entry := Entry{
			Index:    idx + 1,
			SHA:      commit.SHA,
			ShortSHA: commit.ShortSHA,
			Subject:  commit.Subject,
			Body:     commit.Body,
			Status:   StatusCreatePR,
			BaseRef:  cfg.Base,
		}

		meta, err := git.ReadMetadata(cfg.NotesRef, commit.SHA)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			entry.Slot = meta.Slot
			entry.HeadRef = slot.DeriveBranchName(currentBranch, meta.Slot)
			if meta.PR != nil {
				entry.PRNumber = *meta.PR
			}
		}

		s.Entries = append(s.Entries, entry)
	}

	remoteHeads, prStates, err := fetchRemoteAndPRState(ctx, cfg, forge, s.PRNumbers())
	if err != nil {
		return nil, err
	}

	if err := hydrate(s, cfg, remoteHeads, prStates); err != nil {
		return nil, err
	}

	chainBaseRefs(s)
	return s, nil
}

// fetchRemoteAndPRState lists remote heads and batch-fetches PR state
// concurrently, joining both before returning.
func fetchRemoteAndPRState(ctx context.Context, cfg *config.Config, forge github.Client, prNumbers []int) (map[string]string, map[int]*github.PullRequestInfo, error) {
	var (
		wg          sync.WaitGroup
		remoteHeads map[string]string
		remoteErr   error
		prStates    map[int]*github.PullRequestInfo
		prErr       error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		remoteHeads, remoteErr = git.ListRemoteHeads(ctx, cfg.Remote)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		prStates, prErr = forge.BatchGetPRs(ctx, prNumbers)
	}()

	wg.Wait()

	if remoteErr != nil {
		return nil, nil, remoteErr
	}
	if prErr != nil {
		return nil, nil, prErr
	}
	return remoteHeads, prStates, nil
}

// hydrate fills in per-entry remote and PR state. Entries without metadata
// get a display-only predicted slot from an unsaved cache copy.
func hydrate(s *Stack, cfg *config.Config, remoteHeads map[string]string, prStates map[int]*github.PullRequestInfo) error {
	gitDir, err := git.GetGitDir()
	if err != nil {
		return err
	}
	// Predictions come from a cache that is never saved, so they stay
	// display-only until export assigns real slots.
	cache, err := slot.LoadCache(gitDir)
	if err != nil {
		return fmt.Errorf("failed to load slot cache: %w", err)
	}
	for i := range s.Entries {
		if s.Entries[i].Slot != "" {
			cache.EnsureSlot(s.CurrentBranch, s.Entries[i].Slot)
		}
	}

	for i := range s.Entries {
		entry := &s.Entries[i]

		if entry.HeadRef == "" {
			entry.PredictedSlot = cache.Allocate(s.CurrentBranch)
			entry.Status = StatusCreatePR
		} else if remoteSHA, ok := remoteHeads[entry.HeadRef]; ok {
			entry.RemoteExists = true
			entry.RemoteSHA = remoteSHA
			if remoteSHA == entry.SHA {
				entry.Status = StatusUpToDate
			} else {
				entry.Status = StatusNeedsUpdate
			}
		} else {
			entry.Status = StatusCreatePR
		}

		if entry.PRNumber > 0 {
			if pr := prStates[entry.PRNumber]; pr != nil {
				entry.PRState = pr.State
				entry.PRBase = pr.Base
				entry.PRBody = pr.Body
				if pr.State == github.PRStateMerged {
					entry.Merged = true
				}
			}
		}
	}
	return nil
}

// chainBaseRefs points every entry above the bottom at the entry below it.
func chainBaseRefs(s *Stack) {
	for i := 1; i < len(s.Entries); i++ {
		if ref := s.Entries[i-1].HeadRef; ref != "" {
			s.Entries[i].BaseRef = ref
		} else {
			s.Entries[i].BaseRef = s.Base
		}
	}
}
