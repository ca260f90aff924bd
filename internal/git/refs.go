package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	laminarerrors "laminar.dev/laminar/internal/errors"
)

// RefUpdate pairs a remote branch name with the commit it should point at.
type RefUpdate struct {
	Name string
	SHA  string
}

// Refspec renders the update as an explicit force refspec. Pushing
// "<sha>:refs/heads/<name>" avoids creating local branches for the
// per-commit remote refs.
func (u RefUpdate) Refspec() string {
	return fmt.Sprintf("%s:refs/heads/%s", u.SHA, u.Name)
}

// ListRemoteHeads lists refs/heads/* on the remote over a single
// connection, returning branch name -> SHA.
func ListRemoteHeads(ctx context.Context, remote string) (map[string]string, error) {
	lines, err := RunGitCommandLinesWithContext(ctx, "ls-remote", "--heads", remote)
	if err != nil {
		return nil, laminarerrors.NewConnectivityError(
			fmt.Sprintf("listing refs on %s", remote),
			"Check network connectivity and remote access, then retry.",
			err)
	}

	return parseRemoteHeads(lines), nil
}

// parseRemoteHeads parses ls-remote --heads output (SHA <TAB> ref) into
// branch name -> SHA.
func parseRemoteHeads(lines []string) map[string]string {
	heads := make(map[string]string, len(lines))
	for _, line := range lines {
		sha, ref, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		name := strings.TrimPrefix(ref, "refs/heads/")
		if name == ref {
			continue
		}
		heads[name] = sha
	}
	return heads
}

// Capabilities caches per-remote server capability probes for the life of
// a command invocation.
type Capabilities struct {
	mu     sync.Mutex
	atomic map[string]bool
}

// NewCapabilities creates an empty capability cache.
func NewCapabilities() *Capabilities {
	return &Capabilities{atomic: make(map[string]bool)}
}

// SupportsAtomicPush reports whether the remote accepts --atomic pushes.
// The probe is a dry-run push of the real refspecs; a server that lacks
// the capability rejects it with an atomic-specific message on stderr.
// The result is cached per remote.
func (c *Capabilities) SupportsAtomicPush(ctx context.Context, remote string, updates []RefUpdate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if supported, ok := c.atomic[remote]; ok {
		return supported
	}

	args := []string{"push", "--atomic", "--dry-run", "--porcelain", "--force", remote}
	for _, u := range updates {
		args = append(args, u.Refspec())
	}

	supported := true
	if _, err := RunGitCommandWithContext(ctx, args...); err != nil {
		var cmdErr *laminarerrors.GitCommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "atomic") {
			supported = false
		}
		// Other dry-run failures (auth, connectivity) surface from the
		// real push; they say nothing about atomic support.
	}
	c.atomic[remote] = supported
	return supported
}

// PartialPushError reports a sequential push where some refs landed and
// others did not.
type PartialPushError struct {
	Succeeded []string
	Failed    map[string]error
}

func (e *PartialPushError) Error() string {
	failed := make([]string, 0, len(e.Failed))
	for name := range e.Failed {
		failed = append(failed, name)
	}
	sort.Strings(failed)

	var b strings.Builder
	fmt.Fprintf(&b, "pushed %d of %d refs; failed:", len(e.Succeeded), len(e.Succeeded)+len(e.Failed))
	for _, name := range failed {
		fmt.Fprintf(&b, "\n  %s: %v", name, e.Failed[name])
	}
	return b.String()
}

// Is returns true if the target error is ErrConnectivity
func (e *PartialPushError) Is(target error) bool {
	return target == laminarerrors.ErrConnectivity
}

// PushRefs force-pushes the given updates to the remote. When the remote
// supports atomic pushes the whole set goes in one all-or-nothing push;
// otherwise refs are pushed one at a time in descending refspec order,
// with per-ref failures collected into a PartialPushError.
func PushRefs(ctx context.Context, remote string, updates []RefUpdate, caps *Capabilities) error {
	if len(updates) == 0 {
		return nil
	}

	if caps.SupportsAtomicPush(ctx, remote, updates) {
		args := []string{"push", "--atomic", "--force", remote}
		for _, u := range updates {
			args = append(args, u.Refspec())
		}
		if _, err := RunGitCommandWithContext(ctx, args...); err != nil {
			return laminarerrors.NewConnectivityError(
				fmt.Sprintf("atomic push to %s", remote),
				"No refs were updated. Check remote access and retry the export.",
				err)
		}
		return nil
	}

	// Sequential fallback. Descending refspec order so that failures
	// leave a deterministic partial state.
	sorted := make([]RefUpdate, len(updates))
	copy(sorted, updates)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Refspec() > sorted[j].Refspec()
	})

	var succeeded []string
	failed := make(map[string]error)
	for _, u := range sorted {
		if _, err := RunGitCommandWithContext(ctx, "push", "--force", remote, u.Refspec()); err != nil {
			failed[u.Name] = err
			continue
		}
		succeeded = append(succeeded, u.Name)
	}

	if len(failed) > 0 {
		return &PartialPushError{Succeeded: succeeded, Failed: failed}
	}
	return nil
}

// FetchRemote updates remote-tracking refs for the remote.
func FetchRemote(ctx context.Context, remote string) error {
	if _, err := RunGitCommandWithContext(ctx, "fetch", remote); err != nil {
		return laminarerrors.NewConnectivityError(
			fmt.Sprintf("fetching %s", remote),
			"Check network connectivity and remote access, then retry.",
			err)
	}
	return nil
}

// UpdateRemoteTrackingRef records an observed remote tip locally without a
// fetch. Used after a successful push so reorder detection sees the tips
// this process just wrote.
func UpdateRemoteTrackingRef(remote, branchName, sha string) error {
	ref := fmt.Sprintf("refs/remotes/%s/%s", remote, branchName)
	_, err := RunGitCommand("update-ref", ref, sha)
	if err != nil {
		return fmt.Errorf("failed to update tracking ref %s: %w", ref, err)
	}
	return nil
}
