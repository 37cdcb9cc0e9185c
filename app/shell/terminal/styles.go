package terminal

import "github.com/charmbracelet/lipgloss"

var (
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	debugStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#767676"))
)
