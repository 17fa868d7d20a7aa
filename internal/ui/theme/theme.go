// Package theme holds the console palette and styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, readable on dark and light terminals.
var (
	Primary = lipgloss.Color("#8B5CF6") // Purple
	Teal    = lipgloss.Color("#14B8A6")
	Accent  = lipgloss.Color("#F97316") // Orange
	Success = lipgloss.Color("#22C55E") // Green
	Error   = lipgloss.Color("#F43F5E") // Rose
	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(Teal).
		Italic(true)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)
)

// Verdicts and slot states
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	NeedsWork = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent)
)

// Blocks
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	ProgressFilled = lipgloss.NewStyle().
			Foreground(Teal)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)
)
