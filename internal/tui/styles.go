package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6B7280")
	danger  = lipgloss.Color("#E53935")
	outline = lipgloss.Color("#2A3850")
)

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	column   lipgloss.Style
	focused  lipgloss.Style
	selected lipgloss.Style
	cursor   lipgloss.Style
	muted    lipgloss.Style
	err      lipgloss.Style
}

func defaultStyles() styles {
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(outline).
		Padding(0, 1)

	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		header:   lipgloss.NewStyle().Bold(true),
		column:   column,
		focused:  column.BorderForeground(accent),
		selected: lipgloss.NewStyle().Foreground(accent),
		cursor:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(muted),
		err:      lipgloss.NewStyle().Foreground(danger),
	}
}
