package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette of the form editor. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Row decorations.
	GroupForeground   lipgloss.Color // Composite headings.
	RequiredMarker    lipgloss.Color
	ErrorForeground   lipgloss.Color
	WarningForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	GroupForeground:   lipgloss.Color("75"),  // blue
	RequiredMarker:    lipgloss.Color("208"), // orange
	ErrorForeground:   lipgloss.Color("196"), // red
	WarningForeground: lipgloss.Color("220"), // amber

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
}

type styles struct {
	normal   lipgloss.Style
	faint    lipgloss.Style
	selected lipgloss.Style
	group    lipgloss.Style
	required lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	header   lipgloss.Style
	help     lipgloss.Style
	preview  lipgloss.Style
}

func (theme Theme) styles() styles {
	return styles{
		normal:   lipgloss.NewStyle().Foreground(theme.NormalText),
		faint:    lipgloss.NewStyle().Foreground(theme.FaintText),
		selected: lipgloss.NewStyle().Foreground(theme.SelectedForeground).Background(theme.SelectedBackground).Bold(true),
		group:    lipgloss.NewStyle().Foreground(theme.GroupForeground).Bold(true),
		required: lipgloss.NewStyle().Foreground(theme.RequiredMarker),
		err:      lipgloss.NewStyle().Foreground(theme.ErrorForeground),
		warn:     lipgloss.NewStyle().Foreground(theme.WarningForeground),
		header:   lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true),
		help:     lipgloss.NewStyle().Foreground(theme.HelpText),
		preview: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(theme.BorderColor).
			PaddingLeft(1),
	}
}
