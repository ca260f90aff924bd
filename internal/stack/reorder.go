package stack

import (
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/internal/github"
)

// TrackingRefLookup resolves a derived branch name to its last-observed
// remote tip. Returns ("", false) when no tip has been observed.
type TrackingRefLookup func(headRef string) (string, bool)

// RemoteTrackingLookup reads tips from refs/remotes/<remote>/. The
// tracking refs can lag a push made from another clone; a stale tip only
// misclassifies an entry as moved, which costs one redundant (idempotent)
// phase-1 retarget.
func RemoteTrackingLookup(remote string) TrackingRefLookup {
	return func(headRef string) (string, bool) {
		return git.GetRemoteTrackingRevision(remote, headRef)
	}
}

// MovedCommit is a stack entry whose commit no longer matches the remote
// tip recorded for its slot.
type MovedCommit struct {
	// Index is the 0-based position in the stack
	Index int
	// Slot is the entry's slot
	Slot string
	// SHA is the entry's local commit
	SHA string
	// PRNumber backs the entry
	PRNumber int
	// HeadRef is the entry's derived branch name
	HeadRef string
}

// ReorderInfo describes which entries moved since the last export.
type ReorderInfo struct {
	// StableIndex is the 0-based index of the highest entry whose local
	// SHA still matches the remote tip; -1 when every entry moved.
	StableIndex int
	// Moved lists the entries with a PR whose SHA changed
	Moved []MovedCommit
}

// DetectReordering compares each entry's SHA with the last-observed remote
// tip of its derived branch. Entries without metadata are skipped; entries
// without a remote tip count as moved.
func DetectReordering(entries []Entry, lookup TrackingRefLookup) ReorderInfo {
	info := ReorderInfo{StableIndex: -1}

	for idx, entry := range entries {
		if entry.Slot == "" {
			continue
		}

		remoteSHA, ok := lookup(entry.HeadRef)
		changed := !ok || remoteSHA != entry.SHA

		if changed {
			if entry.PRNumber > 0 {
				info.Moved = append(info.Moved, MovedCommit{
					Index:    idx,
					Slot:     entry.Slot,
					SHA:      entry.SHA,
					PRNumber: entry.PRNumber,
					HeadRef:  entry.HeadRef,
				})
			}
		} else {
			info.StableIndex = idx
		}
	}

	return info
}

// BasePlanner computes the base updates needed to keep the PR chain valid
// through an export. A forge that could retarget and push atomically could
// collapse the two phases into one.
type BasePlanner interface {
	// PlanBaseUpdates returns the pre-push (phase 1) and post-push
	// (phase 3) base updates for the moved entries.
	PlanBaseUpdates(s *Stack, reorder ReorderInfo) (phase1, phase3 []github.BaseUpdate)
}

// TwoPhasePlanner parks moved PRs on a base that is valid before the push
// (phase 1), then retargets them onto their true predecessor after the
// push lands (phase 3). This keeps the forge from ever seeing a PR whose
// base branch does not contain its intended history.
type TwoPhasePlanner struct{}

// PlanBaseUpdates implements BasePlanner.
func (TwoPhasePlanner) PlanBaseUpdates(s *Stack, reorder ReorderInfo) (phase1, phase3 []github.BaseUpdate) {
	for _, moved := range reorder.Moved {
		// Park on the highest stable entry below this one, or the base
		// branch when nothing below is stable.
		stableBase := s.Base
		if reorder.StableIndex >= 0 && reorder.StableIndex < moved.Index {
			if ref := s.Entries[reorder.StableIndex].HeadRef; ref != "" {
				stableBase = ref
			}
		}

		// The true base is the entry immediately below in the new order.
		finalBase := s.Base
		if moved.Index > 0 {
			if ref := s.Entries[moved.Index-1].HeadRef; ref != "" {
				finalBase = ref
			}
		}

		phase1 = append(phase1, github.BaseUpdate{PRNumber: moved.PRNumber, Base: stableBase})
		if finalBase != stableBase {
			phase3 = append(phase3, github.BaseUpdate{PRNumber: moved.PRNumber, Base: finalBase})
		}
	}
	return phase1, phase3
}
