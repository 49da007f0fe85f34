package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("242"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("255"))

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	Good = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	Bad  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("238"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)
)

// Separator draws a dim rule of the given width.
func Separator(width int) string {
	if width < 1 {
		width = 1
	}
	return Subtle.Render(strings.Repeat("─", width))
}
