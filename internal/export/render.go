package export

import (
	"fmt"
	"strings"

	"laminar.dev/laminar/internal/output"
)

// RenderPlan renders the plan for --dry-run. The same plan the executor
// would run is shown, so what you see is exactly what you get.
func RenderPlan(plan *Plan, opts Options) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(output.StyleCurrent.Render("DRY RUN") + output.ColorDim(" (no changes will be made)") + "\n\n")

	if newSlots := newAssignments(plan); len(newSlots) > 0 {
		b.WriteString("  📦 Slot Assignments\n")
		for _, a := range newSlots {
			fmt.Fprintf(&b, "    NEW %s → %s\n", output.StyleSlot.Render(a.Slot), output.StyleBranch.Render(a.HeadRef))
		}
		b.WriteString("\n")
	}

	if len(plan.Phase1BaseUpdates) > 0 {
		b.WriteString("  🔄 Pre-Push Base Updates (Reorder Safety)\n")
		for _, u := range plan.Phase1BaseUpdates {
			fmt.Fprintf(&b, "    PR #%d → base: %s\n", u.PRNumber, output.StyleBranch.Render(u.Base))
		}
		b.WriteString("\n")
	}

	if !opts.PROnly {
		b.WriteString("  🚀 Push Refs\n")
		pushes := 0
		for _, r := range plan.RefsToPush {
			if r.NeedsPush {
				pushes++
				fmt.Fprintf(&b, "    PUSH %s %s\n", output.StyleBranch.Render(r.HeadRef), output.ColorDim("--force"))
			} else if opts.Verbose {
				fmt.Fprintf(&b, "    %s\n", output.ColorDim("SKIP "+r.HeadRef+" (up-to-date)"))
			}
		}
		if pushes == 0 {
			b.WriteString("    ✓ " + output.ColorDim("All refs up-to-date") + "\n")
		}
		b.WriteString("\n")
	}

	if !opts.PushOnly {
		total := len(plan.PRsToCreate) + len(plan.PRsToUpdate)
		if total > 0 {
			fmt.Fprintf(&b, "  📝 Pull Requests %s\n", output.ColorDim(fmt.Sprintf("(%d total)", total)))
			renderPRRows(&b, plan, opts)
			b.WriteString("\n")
		}
	}

	if len(plan.Phase3BaseUpdates) > 0 {
		b.WriteString("  🔗 Post-Push Base Updates (Final Chain)\n")
		for _, u := range plan.Phase3BaseUpdates {
			fmt.Fprintf(&b, "    PR #%d → base: %s\n", u.PRNumber, output.StyleBranch.Render(u.Base))
		}
		b.WriteString("\n")
	}

	total := len(plan.PRsToCreate) + len(plan.PRsToUpdate)
	if !opts.PushOnly && total > 1 {
		b.WriteString("  💬 PR Description Updates\n")
		fmt.Fprintf(&b, "    UPDATE %d PR descriptions with stack callout\n\n", total)
	}

	if plan.HasActions() {
		b.WriteString("  → Run " + output.StyleMerged.Render("laminar export") + " to execute these changes.\n")
	} else {
		b.WriteString("  ✓ " + output.StyleMerged.Render("Everything is up-to-date!") + "\n")
	}

	return b.String()
}

func newAssignments(plan *Plan) []SlotAssignment {
	var out []SlotAssignment
	for _, a := range plan.SlotAssignments {
		if a.IsNew {
			out = append(out, a)
		}
	}
	return out
}

// renderPRRows prints one aligned row per PR in stack order.
func renderPRRows(b *strings.Builder, plan *Plan, opts Options) {
	type row struct {
		icon  string
		pr    string
		base  string
		head  string
		title string
		draft string
	}

	var rows []row
	for _, a := range plan.SlotAssignments {
		if create := findCreate(plan, a.SHA); create != nil {
			r := row{icon: "+", pr: "new", base: create.BaseRef, head: create.HeadRef, title: truncate(create.Title, 35)}
			if opts.Draft {
				r.draft = " (draft)"
			}
			rows = append(rows, r)
		} else if update := findUpdate(plan, a.HeadRef); update != nil {
			icon := "✓"
			if update.IsReordered {
				icon = "↻"
			} else if update.NeedsBaseUpdate {
				icon = "~"
			}
			rows = append(rows, row{
				icon:  icon,
				pr:    fmt.Sprintf("#%d", update.PRNumber),
				base:  update.BaseRef,
				head:  update.HeadRef,
				title: truncate(update.Title, 35),
			})
		}
	}

	maxPR, maxBase := 0, 0
	for _, r := range rows {
		if len(r.pr) > maxPR {
			maxPR = len(r.pr)
		}
		if len(r.base) > maxBase {
			maxBase = len(r.base)
		}
	}

	for i, r := range rows {
		fmt.Fprintf(b, "    %d. %s %-*s  %*s %s %s  %s%s\n",
			i+1, r.icon, maxPR, r.pr, maxBase, output.ColorDim(r.base),
			output.ColorDim("←"), output.StyleBranch.Render(r.head), r.title,
			output.StylePending.Render(r.draft))
	}
}

func findCreate(plan *Plan, sha string) *PRToCreate {
	for i := range plan.PRsToCreate {
		if plan.PRsToCreate[i].SHA == sha {
			return &plan.PRsToCreate[i]
		}
	}
	return nil
}

func findUpdate(plan *Plan, headRef string) *PRToUpdate {
	for i := range plan.PRsToUpdate {
		if plan.PRsToUpdate[i].HeadRef == headRef {
			return &plan.PRsToUpdate[i]
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
