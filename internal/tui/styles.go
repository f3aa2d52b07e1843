package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jakoblorz/go-codebuilder/internal/terminal"
)

var (
	purple = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	grey   = lipgloss.Color("#888888")
	red    = lipgloss.Color("#FF5F5F")
)

var (
	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(purple).
			MarginBottom(1)

	// Header styling for the editor and shell
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(purple).
			Padding(0, 1)

	// Selected item styling
	SelectedStyle = lipgloss.NewStyle().
			Foreground(purple).
			Bold(true)

	// Help text styling
	HelpStyle = lipgloss.NewStyle().
			Foreground(grey).
			MarginTop(1)

	// Error styling
	ErrorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	// Success styling
	SuccessStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	// Subtle text styling
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	// Description styling
	DescStyle = lipgloss.NewStyle().
			Foreground(grey).
			Italic(true)

	// Prompt styling for the shell input
	PromptStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	inputLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	outputLineStyle = lipgloss.NewStyle()
	errorLineStyle  = lipgloss.NewStyle().Foreground(red)
	infoLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF"))
)

// LineStyle returns the style a terminal line is rendered with
func LineStyle(t terminal.LineType) lipgloss.Style {
	switch t {
	case terminal.LineInput:
		return inputLineStyle
	case terminal.LineError:
		return errorLineStyle
	case terminal.LineInfo:
		return infoLineStyle
	default:
		return outputLineStyle
	}
}
