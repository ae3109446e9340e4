package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for the TUI.
var (
	// Tab bar styles.
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Underline(true) // cyan
	tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))                            // gray

	// Section titles and labels.
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // blue
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// Option toggles in the generate view.
	toggleOnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	toggleOffStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	toggleFocusedStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	// Log pane.
	logLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	logErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red

	// Status bar.
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusOkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// Spinner.
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta

	// Error block shown when a run fails.
	errorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("1"))

	// Input boxes.
	focusedBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("2"))
	blurredBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8"))
)
