package output

import (
	"fmt"
	"strings"
)

// TimelineStatus drives the bullet and status line of a timeline entry.
type TimelineStatus int

const (
	TimelineCreatePR TimelineStatus = iota
	TimelineSynced
	TimelineExportNeeded
	TimelineMerged
)

// TimelineEntry is the view model for one commit in the stack timeline.
type TimelineEntry struct {
	ShortSHA      string
	Subject       string
	Slot          string
	PredictedSlot string
	PRNumber      int
	PRURL         string
	Status        TimelineStatus
	RemoteSHA     string
	RemoteExists  bool
}

// RenderTimeline renders the stack bottom-up from the base branch.
func RenderTimeline(base string, entries []TimelineEntry) string {
	var b strings.Builder

	if len(entries) == 0 {
		b.WriteString(StyleDim.Render("No commits in stack") + "\n")
		b.WriteString(fmt.Sprintf("  ℹ Current branch is up to date with %s\n", StyleBranch.Render(base)))
		return b.String()
	}

	maxIndexWidth := len(fmt.Sprintf("%d", len(entries)))
	padding := strings.Repeat(" ", maxIndexWidth+1)

	fmt.Fprintf(&b, "  %s %s %s\n", padding, StyleDim.Render("┌─"), StyleDim.Render(base))
	fmt.Fprintf(&b, "  %s %s\n", padding, StyleDim.Render("│"))

	for idx, entry := range entries {
		isLast := idx == len(entries)-1
		renderTimelineEntry(&b, entry, isLast, idx+1, maxIndexWidth)
		if !isLast {
			fmt.Fprintf(&b, "  %s %s\n", padding, StyleDim.Render("│"))
		}
	}

	b.WriteString("\n")
	return b.String()
}

func renderTimelineEntry(b *strings.Builder, entry TimelineEntry, isLast bool, index, maxIndexWidth int) {
	connector := "├─"
	indent := "│"
	if isLast {
		connector = "└─"
		indent = " "
	}

	var bullet string
	switch entry.Status {
	case TimelineMerged:
		bullet = StyleSlot.Render("●")
	case TimelineSynced:
		bullet = StyleMerged.Render("●")
	case TimelineExportNeeded:
		bullet = StylePending.Render("●")
	case TimelineCreatePR:
		bullet = StyleBranch.Render("●")
	}

	subject := entry.Subject
	if len(subject) > 80 {
		subject = subject[:77] + "..."
	}

	slotDisplay := ""
	if entry.Slot != "" {
		slotDisplay = fmt.Sprintf("  [%s]", StylePending.Render(entry.Slot))
	} else if entry.PredictedSlot != "" {
		slotDisplay = fmt.Sprintf("  [%s]", StyleDim.Render("?→"+entry.PredictedSlot))
	}

	indexStr := fmt.Sprintf("%*d.", maxIndexWidth, index)
	fmt.Fprintf(b, "  %s %s%s  %s  %s%s\n",
		StyleDim.Render(indexStr),
		StyleDim.Render(connector),
		bullet,
		entry.ShortSHA,
		subject,
		slotDisplay)

	padding := strings.Repeat(" ", maxIndexWidth+1)

	prLine := StyleDim.Render("<PR to be created>")
	if entry.PRNumber > 0 {
		if entry.PRURL != "" {
			prLine = StyleBranch.Render(entry.PRURL)
		} else {
			prLine = fmt.Sprintf("#%d", entry.PRNumber)
		}
	}
	fmt.Fprintf(b, "  %s %s  %s\n", padding, StyleDim.Render(indent), prLine)

	if entry.RemoteExists || entry.Status == TimelineMerged {
		fmt.Fprintf(b, "  %s %s  %s\n", padding, StyleDim.Render(indent), timelineStatusLine(entry))
	}
}

func timelineStatusLine(entry TimelineEntry) string {
	switch entry.Status {
	case TimelineMerged:
		return StyleSlot.Render("Merged")
	case TimelineExportNeeded:
		label := StylePending.Render("Export needed")
		if entry.RemoteSHA != "" {
			short := entry.RemoteSHA
			if len(short) > 7 {
				short = short[:7]
			}
			return fmt.Sprintf("%s (remote: %s)", label, StyleDim.Render(short))
		}
		return label
	default:
		return StyleMerged.Render("Synced")
	}
}
