package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#3B82F6"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	textColor   = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
	panelColor  = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
	errorColor  = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelColor).
			Padding(0, 1)

	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelColor).
			Foreground(textColor).
			Align(lipgloss.Center).
			Padding(1, 0)

	activeTileStyle = tileStyle.
			Background(accentColor).
			Foreground(lipgloss.Color("#FFFFFF")).
			BorderForeground(accentColor)

	cursorBorderColor = textColor

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelColor).
			Padding(0, 1)

	activeButtonStyle = buttonStyle.
				Background(accentColor).
				Foreground(lipgloss.Color("#FFFFFF")).
				BorderForeground(accentColor)

	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(textColor)
)
