package ui

import "github.com/charmbracelet/lipgloss"

// Shared styles for all views. The palette sticks to the terminal's own
// ANSI colors.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5"))

	helpStyle = lipgloss.NewStyle().
			Faint(true)

	sysStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("2"))

	aiLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("4"))

	activeKBStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("2"))

	viewportStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)
