package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"laminar.dev/laminar/internal/output"
	"laminar.dev/laminar/internal/stack"
)

// ViewOptions controls the view action.
type ViewOptions struct {
	// JSON emits the stack as machine-readable JSON instead of the timeline
	JSON bool
}

// viewEntry is the JSON shape of one stack entry.
type viewEntry struct {
	Index    int    `json:"index"`
	SHA      string `json:"sha"`
	Subject  string `json:"subject"`
	Slot     string `json:"slot,omitempty"`
	Branch   string `json:"branch,omitempty"`
	PR       int    `json:"pr,omitempty"`
	PRState  string `json:"prState,omitempty"`
	Base     string `json:"base"`
	Status   string `json:"status"`
	RemoteSH string `json:"remoteSha,omitempty"`
}

// ViewAction renders the current stack as a timeline or JSON.
func ViewAction(ctx context.Context, actx *Context, opts ViewOptions) error {
	s, err := stack.Discover(ctx, actx.Cfg, actx.Forge)
	if err != nil {
		return err
	}

	if opts.JSON {
		return renderJSON(actx, s)
	}

	entries := make([]output.TimelineEntry, 0, s.Len())
	for _, entry := range s.Entries {
		entries = append(entries, output.TimelineEntry{
			ShortSHA:      entry.ShortSHA,
			Subject:       entry.Subject,
			Slot:          entry.Slot,
			PredictedSlot: entry.PredictedSlot,
			PRNumber:      entry.PRNumber,
			PRURL:         prURL(s.Owner, s.Repo, entry.PRNumber),
			Status:        timelineStatus(entry),
			RemoteSHA:     entry.RemoteSHA,
			RemoteExists:  entry.RemoteExists,
		})
	}

	actx.Splog.Page(output.RenderTimeline(s.Base, entries))
	return nil
}

func renderJSON(actx *Context, s *stack.Stack) error {
	view := struct {
		Base    string      `json:"base"`
		Branch  string      `json:"branch"`
		Entries []viewEntry `json:"entries"`
	}{Base: s.Base, Branch: s.CurrentBranch, Entries: []viewEntry{}}

	for _, entry := range s.Entries {
		ve := viewEntry{
			Index:    entry.Index,
			SHA:      entry.SHA,
			Subject:  entry.Subject,
			Slot:     entry.Slot,
			Branch:   entry.HeadRef,
			PR:       entry.PRNumber,
			Base:     entry.BaseRef,
			Status:   entry.Status.String(),
			RemoteSH: entry.RemoteSHA,
		}
		if entry.PRNumber > 0 {
			ve.PRState = entry.PRState.String()
		}
		view.Entries = append(view.Entries, ve)
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	actx.Splog.Page(string(data))
	return nil
}

func timelineStatus(entry stack.Entry) output.TimelineStatus {
	if entry.Merged {
		return output.TimelineMerged
	}
	switch entry.Status {
	case stack.StatusUpToDate:
		return output.TimelineSynced
	case stack.StatusNeedsUpdate:
		return output.TimelineExportNeeded
	default:
		return output.TimelineCreatePR
	}
}

func prURL(owner, repo string, number int) string {
	if number == 0 {
		return ""
	}
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number)
}
