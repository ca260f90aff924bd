package export

import (
	"fmt"
	"strings"

	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/stack"
)

// Callout sentinels. Everything between them belongs to laminar; user
// content outside them is never touched.
const (
	CalloutBegin = "<!-- laminar:begin (do not edit) -->"
	CalloutEnd   = "<!-- laminar:end -->"
)

// GenerateCallout renders the stack overview block for the PR at the
// given 1-based position.
func GenerateCallout(entries []stack.Entry, currentIndex int, owner, repo string) string {
	lines := []string{
		CalloutBegin,
		"<details open>",
		fmt.Sprintf("<summary>📚 Stack (%d of %d)</summary>", currentIndex, len(entries)),
		"",
	}

	for idx, entry := range entries {
		lines = append(lines, formatStackItem(entry, entry.Index == currentIndex, idx+1, owner, repo))
	}

	lines = append(lines, "", "</details>", CalloutEnd)
	return strings.Join(lines, "\n")
}

func formatStackItem(entry stack.Entry, isCurrent bool, position int, owner, repo string) string {
	stateEmoji := ""
	if entry.PRState == github.PRStateDraft {
		stateEmoji = " 🟡"
	}

	if entry.PRNumber > 0 {
		if isCurrent {
			return fmt.Sprintf("%d. **%s/%s#%d** ← current%s", position, owner, repo, entry.PRNumber, stateEmoji)
		}
		return fmt.Sprintf("%d. %s/%s#%d%s", position, owner, repo, entry.PRNumber, stateEmoji)
	}

	if isCurrent {
		return fmt.Sprintf("%d. **%s** ← current", position, entry.Subject)
	}
	return fmt.Sprintf("%d. %s _(pending)_", position, entry.Subject)
}

// InjectCallout inserts or replaces the stack callout in a PR body,
// preserving all user content.
func InjectCallout(existingBody, callout string) string {
	start := strings.Index(existingBody, CalloutBegin)
	if start < 0 {
		if strings.TrimSpace(existingBody) == "" {
			return callout
		}
		return callout + "\n\n" + existingBody
	}

	end := strings.Index(existingBody[start:], CalloutEnd)
	if end < 0 {
		// Malformed: begin without end, just prepend
		return callout + "\n\n" + existingBody
	}
	endPos := start + end + len(CalloutEnd)

	before := strings.TrimRight(existingBody[:start], " \t\n")
	after := strings.TrimLeft(existingBody[endPos:], " \t\n")

	switch {
	case before == "" && after == "":
		return callout
	case before == "":
		return callout + "\n\n" + after
	case after == "":
		return before + "\n\n" + callout
	default:
		return before + "\n\n" + callout + "\n\n" + after
	}
}

// StripCallout removes the callout from a PR body, keeping everything else.
func StripCallout(body string) string {
	start := strings.Index(body, CalloutBegin)
	if start < 0 {
		return body
	}

	end := strings.Index(body[start:], CalloutEnd)
	if end < 0 {
		// Malformed: begin without end, leave untouched
		return body
	}
	endPos := start + end + len(CalloutEnd)

	before := strings.TrimRight(body[:start], " \t\n")
	after := strings.TrimLeft(body[endPos:], " \t\n")

	switch {
	case before == "" && after == "":
		return ""
	case before == "":
		return after
	case after == "":
		return before
	default:
		return before + "\n\n" + after
	}
}
