package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/daughters-of-aether/arena-client/pkg/toast"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true).
			Padding(1, 0)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9B8CFF")).
			Bold(true).
			Width(14)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6347")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9B8CFF")).
			Padding(0, 1).
			Width(72)
)

func field(label string, value interface{}) string {
	return labelStyle.Render(label) + " " + fmt.Sprint(value)
}

func toastLine(t *toast.Toast) string {
	switch t.Type {
	case toast.TypeSuccess:
		return successStyle.Render("✔ " + t.Message)
	case toast.TypeError:
		return errorStyle.Render("✖ " + t.Message)
	case toast.TypeWarning:
		return warningStyle.Render("! " + t.Message)
	default:
		return infoStyle.Render("• " + t.Message)
	}
}
