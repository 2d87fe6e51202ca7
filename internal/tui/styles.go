package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/billmal071/cosmere/internal/cosmere"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("170") // Purple
	secondaryColor = lipgloss.Color("39")  // Cyan
	dimColor       = lipgloss.Color("240") // Gray
	successColor   = lipgloss.Color("82")  // Green
	errorColor     = lipgloss.Color("196") // Red
	warningColor   = lipgloss.Color("214") // Orange

	// Title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Selected item style
	SelectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	// Normal item style
	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// Dim style for metadata
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Success style
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// Error style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// Warning style
	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// Box style for containers
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(1, 2)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			MarginTop(1)

	// Tab styles
	TabStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	// Badge style for types and abilities
	BadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("237")).
			Padding(0, 1)

	// Dialog style for confirmations
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(0, 2)

	// Disabled control style
	DisabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("237"))

	// Link style for controls that can be used
	LinkStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)
)

// StatusStyle colors a character status.
func StatusStyle(s cosmere.Status) lipgloss.Style {
	switch s {
	case cosmere.StatusAlive:
		return SuccessStyle
	case cosmere.StatusDead:
		return ErrorStyle
	case cosmere.StatusCognitiveShadow:
		return LinkStyle
	default:
		return DimStyle
	}
}

// FormatNumber formats n with thousands separators
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out := s[:lead]
	for i := lead; i < len(s); i += 3 {
		out += "," + s[i:i+3]
	}
	return out
}
