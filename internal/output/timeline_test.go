package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func plainColors(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestRenderTimelineEmpty(t *testing.T) {
	plainColors(t)

	out := RenderTimeline("main", nil)
	require.Contains(t, out, "No commits in stack")
	require.Contains(t, out, "up to date with main")
}

func TestRenderTimeline(t *testing.T) {
	plainColors(t)

	entries := []TimelineEntry{
		{
			ShortSHA:     "aaa1111",
			Subject:      "Add parser",
			Slot:         "01",
			PRNumber:     101,
			PRURL:        "https://github.com/acme/widgets/pull/101",
			Status:       TimelineSynced,
			RemoteExists: true,
		},
		{
			ShortSHA:      "bbb2222",
			Subject:       "Add evaluator",
			PredictedSlot: "02",
			Status:        TimelineCreatePR,
		},
	}

	out := RenderTimeline("main", entries)

	require.Contains(t, out, "┌─ main")
	require.Contains(t, out, "aaa1111")
	require.Contains(t, out, "[01]")
	require.Contains(t, out, "https://github.com/acme/widgets/pull/101")
	require.Contains(t, out, "Synced")
	require.Contains(t, out, "[?→02]")
	require.Contains(t, out, "<PR to be created>")

	// Bottom entry connects with ├─, top entry closes with └─.
	lines := strings.Split(out, "\n")
	require.Less(t, indexContaining(t, lines, "├─"), indexContaining(t, lines, "└─"))
}

func TestRenderTimelineStaleEntryShowsRemoteTip(t *testing.T) {
	plainColors(t)

	entries := []TimelineEntry{
		{
			ShortSHA:     "aaa1111",
			Subject:      "Add parser",
			Slot:         "01",
			PRNumber:     101,
			Status:       TimelineExportNeeded,
			RemoteSHA:    "0123456789abcdef",
			RemoteExists: true,
		},
	}

	out := RenderTimeline("main", entries)
	require.Contains(t, out, "Export needed")
	require.Contains(t, out, "0123456")
	require.NotContains(t, out, "0123456789abcdef")
}

func indexContaining(t *testing.T, lines []string, substr string) int {
	t.Helper()
	for i, line := range lines {
		if strings.Contains(line, substr) {
			return i
		}
	}
	t.Fatalf("no line contains %q", substr)
	return -1
}
