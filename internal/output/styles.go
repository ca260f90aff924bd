package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Styles shared across commands.
var (
	StyleCurrent = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	StyleBranch  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	StyleSlot    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	StyleMerged  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	StylePending = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	StyleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	StyleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	StyleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// InitColorProfile disables styling when stdout is not a terminal.
func InitColorProfile() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return StyleDim.Render(text)
}
