// Package stack models the linear range of commits between the base
// branch and HEAD, and detects how it changed since the last export.
package stack

import (
	"laminar.dev/laminar/internal/github"
)

// UpdateStatus describes an entry's relation to its remote branch.
type UpdateStatus int

const (
	// StatusCreatePR means no remote branch (or no metadata) exists yet
	StatusCreatePR UpdateStatus = iota
	// StatusUpToDate means the remote branch matches the local commit
	StatusUpToDate
	// StatusNeedsUpdate means the remote branch points at an older SHA
	StatusNeedsUpdate
)

// String implements fmt.Stringer.
func (s UpdateStatus) String() string {
	switch s {
	case StatusCreatePR:
		return "create-pr"
	case StatusUpToDate:
		return "up-to-date"
	case StatusNeedsUpdate:
		return "needs-update"
	}
	return "unknown"
}

// Entry is one commit in the stack.
type Entry struct {
	// Index is the 1-based position in the stack, bottom first
	Index int
	// SHA is the full commit hash
	SHA string
	// ShortSHA is the 7-character hash for display
	ShortSHA string
	// Subject is the first line of the commit message
	Subject string
	// Body is the commit message after the subject
	Body string
	// Slot is the assigned slot from metadata, empty when unassigned
	Slot string
	// PredictedSlot is the display-only slot shown for metadata-less entries
	PredictedSlot string
	// HeadRef is the derived remote branch name, empty when no slot exists
	HeadRef string
	// PRNumber is the PR backing this entry, 0 when none
	PRNumber int
	// PRState is the forge state of the PR, empty when no PR
	PRState github.PRState
	// PRBase is the base branch the PR currently targets on the forge
	PRBase string
	// PRBody is the PR description currently on the forge
	PRBody string
	// Status is the entry's relation to its remote branch
	Status UpdateStatus
	// BaseRef is the branch this entry's PR targets
	BaseRef string
	// RemoteSHA is the remote branch tip when it exists
	RemoteSHA string
	// RemoteExists reports whether the derived branch exists on the remote
	RemoteExists bool
	// Merged reports whether the PR has been merged into the base
	Merged bool
}

// Stack is the complete snapshot of the commit range, bottom to top.
type Stack struct {
	// Base is the branch the stack grows from
	Base string
	// CurrentBranch is the branch HEAD is on
	CurrentBranch string
	// Entries in order, bottom (oldest) first
	Entries []Entry
	// Owner and Repo identify the forge repository
	Owner string
	Repo  string
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.Entries)
}

// IsEmpty reports whether the stack has no entries.
func (s *Stack) IsEmpty() bool {
	return len(s.Entries) == 0
}

// PRNumbers returns the numbers of all entries that have a PR, bottom first.
func (s *Stack) PRNumbers() []int {
	var numbers []int
	for _, entry := range s.Entries {
		if entry.PRNumber > 0 {
			numbers = append(numbers, entry.PRNumber)
		}
	}
	return numbers
}

// Bottom returns the lowest entry, or nil for an empty stack.
func (s *Stack) Bottom() *Entry {
	if len(s.Entries) == 0 {
		return nil
	}
	return &s.Entries[0]
}
