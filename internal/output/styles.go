package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Every color used by the CLI is named here.
var (
	// colorCyan is used for identifiable nouns: descriptor names, pass names, components.
	colorCyan = lipgloss.Color("14")

	colorGreen = lipgloss.Color("82")

	// ColorYellow is used for skipped passes and absent optional files.
	ColorYellow = lipgloss.Color("220")

	colorRed = lipgloss.Color("196")

	// colorBoldRed matches the ERROR log level.
	colorBoldRed = lipgloss.Color("204")

	colorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (file names, pass names, components).
	StyleNoun = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleAction styles action verbs (reading, assembling, applying).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Status words for passes and files.
const (
	StatusApplied   = "applied"
	StatusSkipped   = "skipped"
	StatusAbsent    = "absent"
	StatusUnchanged = "unchanged"
	StatusRemoved   = "removed"
	StatusValid     = "valid"
	StatusFailed    = "failed"
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusApplied, StatusValid:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusSkipped, StatusAbsent:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusUnchanged:
		return lipgloss.NewStyle().Faint(true)
	case StatusRemoved:
		return lipgloss.NewStyle().Foreground(colorRed)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minNameColumnWidth keeps status words aligned across lines.
const minNameColumnWidth = 32

// FormatStatusLine renders `<prefix>:<name>   <status>` with the status
// right-aligned and color-coded.
func FormatStatusLine(prefix, name, status string) string {
	padding := minNameColumnWidth - len(name)
	if padding < 2 {
		padding = 2
	}
	return StyleDim.Render(prefix+":") +
		StyleNoun.Render(name) +
		strings.Repeat(" ", padding) +
		statusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}

// vetLabelWidth aligns the detail column of vet check lines.
const vetLabelWidth = 34

// FormatVetCheck renders one passed check with an optional aligned detail.
func FormatVetCheck(label, detail string) string {
	line := FormatCheckmark(label)
	if detail == "" {
		return line
	}
	padding := vetLabelWidth - len(label)
	if padding < 2 {
		padding = 2
	}
	return line + strings.Repeat(" ", padding) + StyleDim.Render(detail)
}
