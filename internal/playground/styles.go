package playground

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"})

	fieldStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#4B5563"}).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})

	caretStyle     = lipgloss.NewStyle().Reverse(true)
	selectionStyle = lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "#BFDBFE", Dark: "#1E3A8A"})
	mentionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)

	activeTagStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	inactiveTagStyle = lipgloss.NewStyle().Faint(true)

	pickerStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#3B82F6"))
	pickedStyle = lipgloss.NewStyle().Reverse(true)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)
