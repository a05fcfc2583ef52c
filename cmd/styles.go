package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles used across the CLI commands
var (
	titleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFA500")). // Gold/Amber
		Bold(true).
		Padding(1, 0)

	promptStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CCCCCC")) // Light Gray

	infoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#42E7FF"))

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6347")). // Tomato red
		Bold(true)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Width(18)
)

// field renders one "label value" line of a status table.
func field(label string, value any) string {
	return "   " + labelStyle.Render(label) + fmt.Sprint(value)
}
